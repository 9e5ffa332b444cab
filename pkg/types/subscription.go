package types

// Subscription is the server-side discount-granting subscription record.
// Only the discount percent matters to the cart and checkout flows; it is
// re-fetched on every use, never cached locally.
type Subscription struct {
	ID              string `json:"id"`
	PlanName        string `json:"planName,omitempty"`
	DiscountPercent int    `json:"discountPercent"`
	Status          string `json:"status,omitempty"`
}
