package rest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tiffino/tiffino-go/pkg/enums"
	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// Login exchanges credentials for a storefront bearer token. The backend
// returns the raw token string as the response body; the token is persisted
// under the user role before returning.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/userlog/auth/login")
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "login")
	}
	if resp.IsError() {
		return "", errorFromResponse(resp)
	}

	token := strings.TrimSpace(string(resp.Body()))
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "empty token from login")
	}
	if err := c.tokens.SetToken(enums.RoleUser, token); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist token")
	}
	return token, nil
}

// CartItems returns the server's current cart lines for the logged-in user.
func (c *Client) CartItems(ctx context.Context) ([]types.CartLine, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/usercart/items")
	var lines []types.CartLine
	if err := decode(resp, err, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// CartTotal returns the server-computed item total.
func (c *Client) CartTotal(ctx context.Context) (int, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/usercart/total")
	var total int
	if err := decode(resp, err, &total); err != nil {
		return 0, err
	}
	return total, nil
}

// AddCartItem creates a cart line.
func (c *Client) AddCartItem(ctx context.Context, line types.CartLine) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(line).Post("/usercart/items")
	return decode(resp, err, nil)
}

// UpdateCartItem sets an absolute quantity for a line.
func (c *Client) UpdateCartItem(ctx context.Context, foodID string, quantity int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(types.CartItemUpdate{FoodID: foodID, Quantity: quantity}).
		Put("/usercart/items")
	return decode(resp, err, nil)
}

// RemoveCartItem deletes a line. The line is identified in the request body.
func (c *Client) RemoveCartItem(ctx context.Context, foodID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(types.CartItemRemoval{FoodID: foodID}).
		Delete("/usercart/items")
	return decode(resp, err, nil)
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/usercart/clear")
	return decode(resp, err, nil)
}

// OrdersByUser lists the user's orders. The backend has returned both a bare
// array and a {data: [...]} wrapper; both decode.
func (c *Client) OrdersByUser(ctx context.Context, userID string) ([]types.Order, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/userorder/orders/user/" + userID)
	var raw json.RawMessage
	if err := decode(resp, err, &raw); err != nil {
		return nil, err
	}
	return decodeOrderList(raw)
}

func decodeOrderList(raw json.RawMessage) ([]types.Order, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var orders []types.Order
	if err := json.Unmarshal(raw, &orders); err == nil {
		return orders, nil
	}

	var wrapped struct {
		Data []types.Order `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order list")
	}
	return wrapped.Data, nil
}

// OrderByID fetches a single order snapshot.
func (c *Client) OrderByID(ctx context.Context, orderID string) (*types.Order, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/userorder/orders/" + orderID)
	var order types.Order
	if err := decode(resp, err, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Checkout places an order and returns the new order id.
func (c *Client) Checkout(ctx context.Context, req types.CheckoutRequest) (string, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/userorder/orders/checkout")
	var out types.CheckoutResponse
	if err := decode(resp, err, &out); err != nil {
		return "", err
	}
	orderID := out.ResolvedOrderID()
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "checkout response missing order id")
	}
	return orderID, nil
}

// UpdateOrderStatus advances an order through the pipeline. Production
// clients never call this; it drives the devserver in tests and demos.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		Put("/userorder/orders/" + orderID + "/status")
	return decode(resp, err, nil)
}

// SubscriptionByID fetches a subscription record; discount percentages are
// always read fresh from here, never cached.
func (c *Client) SubscriptionByID(ctx context.Context, id string) (*types.Subscription, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/usersubscription/subscriptions/" + id)
	var sub types.Subscription
	if err := decode(resp, err, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Addresses lists the user's saved delivery addresses.
func (c *Client) Addresses(ctx context.Context) ([]types.Address, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/userlog/addresses/all")
	var addresses []types.Address
	if err := decode(resp, err, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}
