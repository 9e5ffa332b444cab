package types

// CartLine is one product entry in the user's pending order, as the cart
// service stores and returns it. Amounts are integer rupees.
type CartLine struct {
	FoodID   string `json:"foodId"`
	FoodName string `json:"foodName"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int    `json:"subtotal"`
	ImageURL string `json:"imageUrl"`
}

// Dish is the catalog entry a cart line is created from.
type Dish struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Image string `json:"image"`
}

// CartItemUpdate sets an absolute quantity for a line. Mutations are full
// upserts of the new quantity, never relative deltas.
type CartItemUpdate struct {
	FoodID   string `json:"foodId"`
	Quantity int    `json:"quantity"`
}

// CartItemRemoval identifies a line for deletion.
type CartItemRemoval struct {
	FoodID string `json:"foodId"`
}
