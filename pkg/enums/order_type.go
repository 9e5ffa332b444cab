package enums

// OrderType distinguishes pay-per-order checkouts from subscription-backed ones.
type OrderType string

const (
	OrderTypeOneTime      OrderType = "ONE_TIME"
	OrderTypeSubscription OrderType = "SUBSCRIPTION"
)

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderType.
func (t OrderType) IsValid() bool {
	return t == OrderTypeOneTime || t == OrderTypeSubscription
}
