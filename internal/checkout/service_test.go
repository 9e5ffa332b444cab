package checkout

import (
	"context"
	"fmt"
	"io"
	"testing"

	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
)

type stubAPI struct {
	lines       []types.CartLine
	total       int
	addresses   []types.Address
	orderID     string
	checkoutErr error

	checkoutCalls []types.CheckoutRequest
}

func (s *stubAPI) CartItems(ctx context.Context) ([]types.CartLine, error) {
	return s.lines, nil
}

func (s *stubAPI) CartTotal(ctx context.Context) (int, error) {
	return s.total, nil
}

func (s *stubAPI) Addresses(ctx context.Context) ([]types.Address, error) {
	return s.addresses, nil
}

func (s *stubAPI) Checkout(ctx context.Context, req types.CheckoutRequest) (string, error) {
	s.checkoutCalls = append(s.checkoutCalls, req)
	if s.checkoutErr != nil {
		return "", s.checkoutErr
	}
	return s.orderID, nil
}

type stubSubs struct {
	sub *types.Subscription
}

func (s *stubSubs) FetchActive(ctx context.Context) *types.Subscription {
	return s.sub
}

type stubCart struct {
	backendCleared bool
	localCleared   bool
}

func (c *stubCart) ClearBackend(ctx context.Context) { c.backendCleared = true }
func (c *stubCart) ClearLocal()                      { c.localCleared = true }

func signedIn() (Profile, bool) {
	return Profile{UserID: "u1", Name: "Asha", Phone: "9876543210"}, true
}

func signedOut() (Profile, bool) {
	return Profile{}, false
}

func newTestService(t *testing.T, api *stubAPI, subs *stubSubs, cart *stubCart, profile ProfileSource) *Service {
	t.Helper()
	svc, err := NewService(Params{
		API:           api,
		Subscriptions: subs,
		Cart:          cart,
		Profile:       profile,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testLines() []types.CartLine {
	return []types.CartLine{
		{FoodID: "f1", FoodName: "Thali", Price: 120, Quantity: 2, Subtotal: 240, ImageURL: "thali.png"},
		{FoodID: "f2", FoodName: "Lassi", Price: 160, Quantity: 1, Subtotal: 160},
	}
}

func testAddress() types.Address {
	return types.Address{
		ID:                   "a1",
		FlatNoOrBuildingName: "12B",
		Street:               "MG Road",
		City:                 "Pune",
		State:                "MH",
		Pincode:              "411001",
	}
}

func TestQuoteWithoutSubscription(t *testing.T) {
	api := &stubAPI{lines: testLines(), total: 400, addresses: []types.Address{testAddress()}}
	svc := newTestService(t, api, &stubSubs{}, &stubCart{}, signedIn)

	quote, err := svc.Quote(context.Background())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if quote.Bill.Discount != 0 {
		t.Fatalf("expected no discount, got %d", quote.Bill.Discount)
	}
	if quote.Bill.GrandTotal != 465 {
		t.Fatalf("expected grand total 465 for item total 400, got %d", quote.Bill.GrandTotal)
	}
	if quote.Subscription != nil {
		t.Fatal("expected nil subscription")
	}
}

func TestQuoteAppliesSubscriptionDiscount(t *testing.T) {
	api := &stubAPI{lines: testLines(), total: 400, addresses: []types.Address{testAddress()}}
	subs := &stubSubs{sub: &types.Subscription{ID: "s1", DiscountPercent: 20}}
	svc := newTestService(t, api, subs, &stubCart{}, signedIn)

	quote, err := svc.Quote(context.Background())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if quote.Bill.Discount != 80 {
		t.Fatalf("expected discount 80, got %d", quote.Bill.Discount)
	}
	if quote.Bill.Tax != 16 {
		t.Fatalf("expected tax on discounted base 16, got %d", quote.Bill.Tax)
	}
	if quote.Bill.GrandTotal != 381 {
		t.Fatalf("expected grand total 381, got %d", quote.Bill.GrandTotal)
	}
}

func TestQuoteRequiresLogin(t *testing.T) {
	svc := newTestService(t, &stubAPI{}, &stubSubs{}, &stubCart{}, signedOut)

	_, err := svc.Quote(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestPlaceOrderAssemblesRequest(t *testing.T) {
	api := &stubAPI{lines: testLines(), total: 400, addresses: []types.Address{testAddress()}, orderID: "o1"}
	subs := &stubSubs{sub: &types.Subscription{ID: "s1", DiscountPercent: 20}}
	cart := &stubCart{}
	svc := newTestService(t, api, subs, cart, signedIn)

	orderID, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{AddressID: "a1", Notes: "ring twice"})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if orderID != "o1" {
		t.Fatalf("expected order id o1, got %q", orderID)
	}

	if len(api.checkoutCalls) != 1 {
		t.Fatalf("expected 1 checkout call, got %d", len(api.checkoutCalls))
	}
	req := api.checkoutCalls[0]
	if req.UserID != "u1" || req.CustomerName != "Asha" || req.CustomerPhoneNumber != "9876543210" {
		t.Fatalf("profile not stamped onto request: %+v", req)
	}
	if req.Address != "12B, MG Road, Pune, MH - 411001" {
		t.Fatalf("unexpected formatted address %q", req.Address)
	}
	if req.OrderType != "SUBSCRIPTION" || req.SubscriptionID != "s1" {
		t.Fatalf("expected subscription order, got type %q sub %q", req.OrderType, req.SubscriptionID)
	}
	if req.AppliedDiscount != 80 {
		t.Fatalf("expected applied discount 80, got %d", req.AppliedDiscount)
	}
	if req.Notes != "ring twice" {
		t.Fatalf("unexpected notes %q", req.Notes)
	}
	if len(req.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(req.Items))
	}
	first := req.Items[0]
	if first.MealName != "Thali" || first.Quantity != 2 || first.PricePerItem != 120 || first.Customizations != "" {
		t.Fatalf("line not snapshotted into item: %+v", first)
	}

	if !cart.backendCleared || !cart.localCleared {
		t.Fatal("expected cart cleared after placed order")
	}
}

func TestPlaceOrderWithoutSubscriptionIsOneTime(t *testing.T) {
	api := &stubAPI{lines: testLines(), total: 400, addresses: []types.Address{testAddress()}, orderID: "o1"}
	svc := newTestService(t, api, &stubSubs{}, &stubCart{}, signedIn)

	if _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{AddressID: "a1"}); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	req := api.checkoutCalls[0]
	if req.OrderType != "ONE_TIME" || req.SubscriptionID != "" {
		t.Fatalf("expected one-time order, got type %q sub %q", req.OrderType, req.SubscriptionID)
	}
	if req.AppliedDiscount != 0 {
		t.Fatalf("expected no discount, got %d", req.AppliedDiscount)
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	api := &stubAPI{addresses: []types.Address{testAddress()}}
	svc := newTestService(t, api, &stubSubs{}, &stubCart{}, signedIn)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{AddressID: "a1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
	if len(api.checkoutCalls) != 0 {
		t.Fatal("expected no checkout call for empty cart")
	}
}

func TestPlaceOrderRejectsUnknownAddress(t *testing.T) {
	api := &stubAPI{lines: testLines(), total: 400, addresses: []types.Address{testAddress()}}
	svc := newTestService(t, api, &stubSubs{}, &stubCart{}, signedIn)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{AddressID: "nope"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPlaceOrderKeepsCartOnFailure(t *testing.T) {
	api := &stubAPI{
		lines:       testLines(),
		total:       400,
		addresses:   []types.Address{testAddress()},
		checkoutErr: fmt.Errorf("payment declined"),
	}
	cart := &stubCart{}
	svc := newTestService(t, api, &stubSubs{}, cart, signedIn)

	if _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{AddressID: "a1"}); err == nil {
		t.Fatal("expected error from failed checkout")
	}
	if cart.backendCleared || cart.localCleared {
		t.Fatal("cart must survive a failed checkout")
	}
}
