package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiffino/tiffino-go/pkg/enums"
	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/localstore"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testTokenStore(t *testing.T) *LocalTokenStore {
	t.Helper()
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewLocalTokenStore(store)
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenStore, onUnauthorized func(enums.Role)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:        srv.URL,
		Tokens:         tokens,
		OnUnauthorized: onUnauthorized,
	}, testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestRoleForPath(t *testing.T) {
	t.Parallel()

	cases := map[string]enums.Role{
		"/api/admin/managers": enums.RoleSuper,
		"/admin/orders":       enums.RoleAdmin,
		"/usercart/items":     enums.RoleUser,
		"/userorder/orders/1": enums.RoleUser,
	}
	for path, want := range cases {
		if got := roleForPath(path); got != want {
			t.Fatalf("roleForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestClientAttachesUserToken(t *testing.T) {
	t.Parallel()

	tokens := testTokenStore(t)
	if err := tokens.SetToken(enums.RoleUser, "user-tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	}), tokens, nil)

	if _, err := client.CartItems(context.Background()); err != nil {
		t.Fatalf("cart items: %v", err)
	}
	if gotAuth != "Bearer user-tok" {
		t.Fatalf("expected user token, got %q", gotAuth)
	}
}

func TestClientFallsBackAcrossRoles(t *testing.T) {
	t.Parallel()

	// Only an admin token exists; a storefront call should still carry it.
	tokens := testTokenStore(t)
	if err := tokens.SetToken(enums.RoleAdmin, "admin-tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	}), tokens, nil)

	if _, err := client.CartItems(context.Background()); err != nil {
		t.Fatalf("cart items: %v", err)
	}
	if gotAuth != "Bearer admin-tok" {
		t.Fatalf("expected admin fallback, got %q", gotAuth)
	}
}

func TestClientSkipsMalformedToken(t *testing.T) {
	t.Parallel()

	tokens := testTokenStore(t)
	if err := tokens.SetToken(enums.RoleUser, `{"not":"a token"}`); err != nil {
		t.Fatalf("set token: %v", err)
	}

	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	}), tokens, nil)

	if _, err := client.CartItems(context.Background()); err != nil {
		t.Fatalf("cart items: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("malformed token must not be attached, got %q", gotAuth)
	}
}

func TestClientClearsTokensAndFiresHookOn401(t *testing.T) {
	t.Parallel()

	tokens := testTokenStore(t)
	tokens.SetToken(enums.RoleUser, "user-tok")
	tokens.SetToken(enums.RoleAdmin, "admin-tok")

	var hookRole enums.Role
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), tokens, func(role enums.Role) {
		hookRole = role
	})

	_, err := client.CartItems(context.Background())
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	if hookRole != enums.RoleUser {
		t.Fatalf("expected user-role hook, got %s", hookRole)
	}
	if _, ok := tokens.Token(enums.RoleUser); ok {
		t.Fatal("user token should be cleared")
	}
	if _, ok := tokens.Token(enums.RoleAdmin); ok {
		t.Fatal("admin token should be cleared")
	}
}

func TestOrdersByUserDecodesBothShapes(t *testing.T) {
	t.Parallel()

	bare, _ := json.Marshal([]types.Order{{OrderID: "o1", Status: "PLACED"}})
	wrapped, _ := json.Marshal(map[string]any{"data": []types.Order{{OrderID: "o2", Status: "DELIVERED"}}})

	bodies := map[string][]byte{
		"/userorder/orders/user/bare":    bare,
		"/userorder/orders/user/wrapped": wrapped,
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bodies[r.URL.Path])
	}), testTokenStore(t), nil)

	orders, err := client.OrdersByUser(context.Background(), "bare")
	if err != nil || len(orders) != 1 || orders[0].OrderID != "o1" {
		t.Fatalf("bare decode failed: %v %+v", err, orders)
	}

	orders, err = client.OrdersByUser(context.Background(), "wrapped")
	if err != nil || len(orders) != 1 || orders[0].OrderID != "o2" {
		t.Fatalf("wrapped decode failed: %v %+v", err, orders)
	}
}

func TestCheckoutResolvesOrderIDFromEitherShape(t *testing.T) {
	t.Parallel()

	responses := [][]byte{
		[]byte(`{"orderId":"ord-1"}`),
		[]byte(`{"order":{"id":"ord-2"}}`),
	}
	var call int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(responses[call])
		call++
	}), testTokenStore(t), nil)

	id, err := client.Checkout(context.Background(), types.CheckoutRequest{})
	if err != nil || id != "ord-1" {
		t.Fatalf("flat shape: %v %q", err, id)
	}
	id, err = client.Checkout(context.Background(), types.CheckoutRequest{})
	if err != nil || id != "ord-2" {
		t.Fatalf("nested shape: %v %q", err, id)
	}
}

func TestLoginStoresRawTokenBody(t *testing.T) {
	t.Parallel()

	tokens := testTokenStore(t)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw-jwt-string\n"))
	}), tokens, nil)

	token, err := client.Login(context.Background(), "dev@tiffino.local", "devpass123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "raw-jwt-string" {
		t.Fatalf("expected trimmed raw token, got %q", token)
	}
	stored, ok := tokens.Token(enums.RoleUser)
	if !ok || stored != "raw-jwt-string" {
		t.Fatalf("expected token persisted, got %q, %v", stored, ok)
	}
}

func TestErrorEnvelopeMessageSurfaces(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeNotFound),
			Message: "order not found",
		}})
	}), testTokenStore(t), nil)

	_, err := client.OrderByID(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
	if typed.Message() != "order not found" {
		t.Fatalf("expected envelope message, got %q", typed.Message())
	}
}
