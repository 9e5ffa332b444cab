package devserver

import "time"

// User is a seeded dev account. Passwords are stored bcrypt-hashed even
// here so the login path matches production shape.
type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	Name         string
	Phone        string
	PasswordHash string
}

// CartItem is one pending-cart line, keyed by user and food.
type CartItem struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	UserID   string `gorm:"index:idx_cart_user_food,unique"`
	FoodID   string `gorm:"index:idx_cart_user_food,unique"`
	FoodName string
	Price    int
	Quantity int
	ImageURL string
}

// Subtotal is derived, never stored.
func (c CartItem) Subtotal() int {
	return c.Price * c.Quantity
}

// Order is a placed order.
type Order struct {
	ID                   string `gorm:"primaryKey"`
	UserID               string `gorm:"index"`
	Status               string
	OrderType            string
	SubscriptionID       string
	AppliedDiscount      int
	TotalAmount          int
	Address              string
	CustomerName         string
	CustomerPhoneNumber  string
	Notes                string
	DeliveryPartnerName  string
	DeliveryPartnerPhone string
	RejectionReason      string
	CreatedAt            time.Time
	Items                []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is an immutable line snapshot taken at checkout.
type OrderItem struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	OrderID        string `gorm:"index"`
	FoodID         string
	MealName       string
	Quantity       int
	PricePerItem   int
	ImageURL       string
	Customizations string
}

// Subscription is a discount-granting plan.
type Subscription struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"index"`
	PlanName        string
	DiscountPercent int
	Status          string
}

// Address is a saved delivery address.
type Address struct {
	ID                   string `gorm:"primaryKey"`
	UserID               string `gorm:"index"`
	FlatNoOrBuildingName string
	Street               string
	Landmark             string
	City                 string
	State                string
	Pincode              string
}
