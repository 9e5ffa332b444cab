package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks an order through the kitchen and delivery pipeline.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusPickedUp  OrderStatus = "PICKED_UP"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// orderProgression is the forward path an order follows. REJECTED sits
// outside it and is reachable from any non-terminal state.
var orderProgression = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusPickedUp,
	OrderStatusDelivered,
}

var validOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusPickedUp,
	OrderStatusDelivered,
	OrderStatusRejected,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusRejected
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := NormalizeOrderStatus(value)
	for _, candidate := range validOrderStatuses {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// NormalizeOrderStatus trims and upper-cases a server-reported status string.
func NormalizeOrderStatus(value string) OrderStatus {
	return OrderStatus(strings.ToUpper(strings.TrimSpace(value)))
}

// ProgressIndex places a status on the forward progression. Unrecognized
// values, including REJECTED, map to 0 so an unexpected backend string
// degrades the step indicator instead of crashing the tracker.
func ProgressIndex(value string) int {
	normalized := NormalizeOrderStatus(value)
	for i, candidate := range orderProgression {
		if candidate == normalized {
			return i
		}
	}
	return 0
}

// ProgressSteps returns the forward progression for step indicators.
func ProgressSteps() []OrderStatus {
	steps := make([]OrderStatus, len(orderProgression))
	copy(steps, orderProgression)
	return steps
}
