package types

import "strings"

// Address is a saved delivery address.
type Address struct {
	ID                    string `json:"id"`
	FlatNoOrBuildingName  string `json:"flatNoOrBuildingName"`
	Street                string `json:"street"`
	Landmark              string `json:"landmark,omitempty"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	Pincode               string `json:"pincode"`
}

// Format renders the single-line form sent with a checkout payload.
func (a Address) Format() string {
	parts := []string{
		a.FlatNoOrBuildingName,
		a.Street,
		a.Landmark,
		strings.TrimSpace(a.City + ", " + a.State + " - " + a.Pincode),
	}
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
