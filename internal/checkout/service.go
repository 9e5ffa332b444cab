package checkout

import (
	"context"
	"fmt"

	"github.com/tiffino/tiffino-go/internal/billing"
	"github.com/tiffino/tiffino-go/pkg/enums"
	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
	"github.com/tiffino/tiffino-go/pkg/validators"
)

// CheckoutAPI is the slice of the platform client checkout consumes.
type CheckoutAPI interface {
	CartItems(ctx context.Context) ([]types.CartLine, error)
	CartTotal(ctx context.Context) (int, error)
	Addresses(ctx context.Context) ([]types.Address, error)
	Checkout(ctx context.Context, req types.CheckoutRequest) (string, error)
}

// SubscriptionSource resolves the user's active subscription, if any.
type SubscriptionSource interface {
	FetchActive(ctx context.Context) *types.Subscription
}

// CartClearer empties the cart after a placed order.
type CartClearer interface {
	ClearBackend(ctx context.Context)
	ClearLocal()
}

// Profile is the signed-in customer's contact details, stamped onto the
// order payload.
type Profile struct {
	UserID string
	Name   string
	Phone  string
}

// ProfileSource reports the signed-in customer, if any.
type ProfileSource func() (Profile, bool)

// Quote is everything the checkout page renders: the cart lines, the saved
// addresses, the resolved subscription and the computed bill.
type Quote struct {
	Lines        []types.CartLine
	Addresses    []types.Address
	Subscription *types.Subscription
	Bill         billing.Bill
}

// PlaceOrderInput selects the delivery address and carries free-form notes.
type PlaceOrderInput struct {
	AddressID string
	Notes     string
}

// Service drives the checkout flow: quoting the bill and placing the order.
type Service struct {
	api     CheckoutAPI
	subs    SubscriptionSource
	cart    CartClearer
	profile ProfileSource
	logg    *logger.Logger
}

// Params wires a checkout Service.
type Params struct {
	API           CheckoutAPI
	Subscriptions SubscriptionSource
	Cart          CartClearer
	Profile       ProfileSource
	Logger        *logger.Logger
}

// NewService builds a checkout service.
func NewService(params Params) (*Service, error) {
	if params.API == nil {
		return nil, fmt.Errorf("checkout api required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription source required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if params.Profile == nil {
		return nil, fmt.Errorf("profile source required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		api:     params.API,
		subs:    params.Subscriptions,
		cart:    params.Cart,
		profile: params.Profile,
		logg:    params.Logger,
	}, nil
}

// Quote assembles the checkout page's view. The subscription is re-resolved
// on every call so a lapsed subscription never grants a stale discount.
func (s *Service) Quote(ctx context.Context) (*Quote, error) {
	if _, ok := s.profile(); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}

	lines, err := s.api.CartItems(ctx)
	if err != nil {
		s.logg.Error(ctx, "checkout.load_cart_failed", err)
		return nil, err
	}
	total, err := s.api.CartTotal(ctx)
	if err != nil {
		s.logg.Error(ctx, "checkout.load_total_failed", err)
		return nil, err
	}
	addresses, err := s.api.Addresses(ctx)
	if err != nil {
		s.logg.Error(ctx, "checkout.load_addresses_failed", err)
		return nil, err
	}

	sub := s.subs.FetchActive(ctx)
	discount := 0
	if sub != nil {
		discount = billing.DiscountAmount(total, sub.DiscountPercent)
	}

	return &Quote{
		Lines:        lines,
		Addresses:    addresses,
		Subscription: sub,
		Bill:         billing.Quote(total, discount),
	}, nil
}

// PlaceOrder places the order for the current cart and the selected address,
// then clears the cart. Returns the new order's id.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (string, error) {
	profile, ok := s.profile()
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	ctx = s.logg.WithUserID(ctx, profile.UserID)

	quote, err := s.Quote(ctx)
	if err != nil {
		return "", err
	}
	if len(quote.Lines) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	address, err := pickAddress(quote.Addresses, input.AddressID)
	if err != nil {
		return "", err
	}

	orderType := enums.OrderTypeOneTime
	subscriptionID := ""
	if quote.Subscription != nil {
		orderType = enums.OrderTypeSubscription
		subscriptionID = quote.Subscription.ID
	}

	req := types.CheckoutRequest{
		UserID:              profile.UserID,
		CustomerName:        profile.Name,
		CustomerPhoneNumber: profile.Phone,
		Address:             address.Format(),
		OrderType:           string(orderType),
		SubscriptionID:      subscriptionID,
		AppliedDiscount:     quote.Bill.Discount,
		Notes:               input.Notes,
		Items:               orderItems(quote.Lines),
	}
	if err := validators.Struct(req); err != nil {
		return "", err
	}

	orderID, err := s.api.Checkout(ctx, req)
	if err != nil {
		s.logg.Error(ctx, "checkout.place_order_failed", err)
		return "", err
	}

	s.cart.ClearBackend(ctx)
	s.cart.ClearLocal()

	s.logg.Info(s.logg.WithOrderID(ctx, orderID), "checkout.order_placed")
	return orderID, nil
}

func pickAddress(addresses []types.Address, id string) (types.Address, error) {
	for _, a := range addresses {
		if a.ID == id {
			return a, nil
		}
	}
	return types.Address{}, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
}

func orderItems(lines []types.CartLine) []types.OrderItem {
	items := make([]types.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, types.OrderItem{
			FoodID:         line.FoodID,
			MealName:       line.FoodName,
			Quantity:       line.Quantity,
			PricePerItem:   line.Price,
			ImageURL:       line.ImageURL,
			Customizations: "",
		})
	}
	return items
}
