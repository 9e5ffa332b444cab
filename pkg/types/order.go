package types

import "time"

// OrderItem is an immutable snapshot of a meal taken at order time.
type OrderItem struct {
	FoodID         string `json:"foodId,omitempty"`
	MealName       string `json:"mealName" validate:"required"`
	Quantity       int    `json:"quantity" validate:"min=1"`
	PricePerItem   int    `json:"pricePerItem" validate:"min=0"`
	ImageURL       string `json:"imageUrl,omitempty"`
	Customizations string `json:"customizations"`
}

// DeliveryAssignment carries partner details once a rider is assigned,
// at or after PICKED_UP.
type DeliveryAssignment struct {
	DeliveryPartnerName  string `json:"deliveryPartnerName,omitempty"`
	DeliveryPartnerPhone string `json:"deliveryPartnerPhone,omitempty"`
}

// Order is the order service's view of a placed order. The backend reports
// partner details either inline or under a nested delivery object; both are
// kept so either shape decodes.
type Order struct {
	OrderID              string              `json:"orderId"`
	UserID               string              `json:"userId,omitempty"`
	Status               string              `json:"status"`
	Items                []OrderItem         `json:"items"`
	TotalAmount          int                 `json:"totalAmount"`
	Address              string              `json:"address"`
	DeliveryPartnerName  string              `json:"deliveryPartnerName,omitempty"`
	DeliveryPartnerPhone string              `json:"deliveryPartnerPhone,omitempty"`
	Delivery             *DeliveryAssignment `json:"delivery,omitempty"`
	RejectionReason      string              `json:"rejectionReason,omitempty"`
	OrderDate            time.Time           `json:"orderDate,omitempty"`
}

// PartnerName resolves the assigned rider's name across both reporting shapes.
func (o Order) PartnerName() string {
	if o.DeliveryPartnerName != "" {
		return o.DeliveryPartnerName
	}
	if o.Delivery != nil {
		return o.Delivery.DeliveryPartnerName
	}
	return ""
}

// PartnerPhone resolves the assigned rider's phone across both reporting shapes.
func (o Order) PartnerPhone() string {
	if o.DeliveryPartnerPhone != "" {
		return o.DeliveryPartnerPhone
	}
	if o.Delivery != nil {
		return o.Delivery.DeliveryPartnerPhone
	}
	return ""
}

// CheckoutRequest is the payload for placing an order.
type CheckoutRequest struct {
	UserID              string      `json:"userId" validate:"required"`
	CustomerName        string      `json:"customerName" validate:"required"`
	CustomerPhoneNumber string      `json:"customerPhoneNumber" validate:"required"`
	Address             string      `json:"address" validate:"required"`
	OrderType           string      `json:"orderType" validate:"required,oneof=ONE_TIME SUBSCRIPTION"`
	SubscriptionID      string      `json:"subscriptionId,omitempty"`
	AppliedDiscount     int         `json:"appliedDiscount" validate:"min=0"`
	Notes               string      `json:"notes"`
	Items               []OrderItem `json:"items" validate:"required,min=1,dive"`
}

// CheckoutResponse tolerates both response shapes the backend has been
// observed returning.
type CheckoutResponse struct {
	OrderID string `json:"orderId,omitempty"`
	Order   *struct {
		ID string `json:"id"`
	} `json:"order,omitempty"`
}

// ResolvedOrderID returns the order id from whichever field is populated.
func (c CheckoutResponse) ResolvedOrderID() string {
	if c.OrderID != "" {
		return c.OrderID
	}
	if c.Order != nil {
		return c.Order.ID
	}
	return ""
}
