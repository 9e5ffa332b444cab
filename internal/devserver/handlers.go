package devserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiffino/tiffino-go/internal/billing"
	"github.com/tiffino/tiffino-go/pkg/config"
	"github.com/tiffino/tiffino-go/pkg/enums"
	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
	"github.com/tiffino/tiffino-go/pkg/validators"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a bearer token. The body is the raw
// token string, matching the production endpoint.
func Login(cfg config.DevServerConfig, store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		user, err := store.UserByEmail(r.Context(), req.Email)
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
			return
		}

		token, err := MintAccessToken(cfg, time.Now(), user)
		if err != nil {
			writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
			return
		}

		writeText(w, http.StatusOK, token)
	}
}

// CartItems lists the caller's cart lines as a bare array.
func CartItems(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.CartForUser(r.Context(), UserIDFromContext(r.Context()))
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		lines := make([]types.CartLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, cartLineView(item))
		}
		writeRaw(w, http.StatusOK, lines)
	}
}

// CartTotal returns the cart's item total as a bare number.
func CartTotal(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.CartForUser(r.Context(), UserIDFromContext(r.Context()))
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		total := 0
		for _, item := range items {
			total += item.Subtotal()
		}
		writeRaw(w, http.StatusOK, total)
	}
}

// AddCartItem creates a line, merging quantities when the food is already
// in the cart.
func AddCartItem(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var line types.CartLine
		if err := validators.DecodeJSONBody(r, &line); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		if line.FoodID == "" {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "foodId is required"))
			return
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}

		item := CartItem{
			UserID:   UserIDFromContext(r.Context()),
			FoodID:   line.FoodID,
			FoodName: line.FoodName,
			Price:    line.Price,
			Quantity: line.Quantity,
			ImageURL: line.ImageURL,
		}
		if err := store.UpsertCartItem(r.Context(), item); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusCreated, cartLineView(item))
	}
}

// UpdateCartItem sets an absolute quantity for a line.
func UpdateCartItem(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CartItemUpdate
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		if req.Quantity < 1 {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1"))
			return
		}

		if err := store.SetCartQuantity(r.Context(), UserIDFromContext(r.Context()), req.FoodID, req.Quantity); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// RemoveCartItem deletes a line identified in the request body.
func RemoveCartItem(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CartItemRemoval
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		if err := store.RemoveCartItem(r.Context(), UserIDFromContext(r.Context()), req.FoodID); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

// ClearCart drops every line for the caller.
func ClearCart(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ClearCart(r.Context(), UserIDFromContext(r.Context())); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

// OrdersByUser lists a user's orders under a data wrapper, one of the two
// shapes the production backend has shipped.
func OrdersByUser(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if userID != UserIDFromContext(r.Context()) {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not your orders"))
			return
		}

		orders, err := store.OrdersForUser(r.Context(), userID)
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		views := make([]types.Order, 0, len(orders))
		for _, order := range orders {
			views = append(views, orderView(order))
		}
		writeEnveloped(w, http.StatusOK, views)
	}
}

// OrderByID returns one order snapshot.
func OrderByID(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := store.OrderByID(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusOK, orderView(*order))
	}
}

// Checkout places an order from the submitted payload. The server recomputes
// the payable total rather than trusting a client-sent figure.
func Checkout(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		if req.UserID != UserIDFromContext(r.Context()) {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "userId does not match token"))
			return
		}

		itemTotal := 0
		items := make([]OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			itemTotal += item.PricePerItem * item.Quantity
			items = append(items, OrderItem{
				FoodID:         item.FoodID,
				MealName:       item.MealName,
				Quantity:       item.Quantity,
				PricePerItem:   item.PricePerItem,
				ImageURL:       item.ImageURL,
				Customizations: item.Customizations,
			})
		}
		bill := billing.Quote(itemTotal, req.AppliedDiscount)

		order := Order{
			ID:                  uuid.NewString(),
			UserID:              req.UserID,
			Status:              string(enums.OrderStatusPlaced),
			OrderType:           req.OrderType,
			SubscriptionID:      req.SubscriptionID,
			AppliedDiscount:     req.AppliedDiscount,
			TotalAmount:         bill.GrandTotal,
			Address:             req.Address,
			CustomerName:        req.CustomerName,
			CustomerPhoneNumber: req.CustomerPhoneNumber,
			Notes:               req.Notes,
			CreatedAt:           time.Now().UTC(),
			Items:               items,
		}
		if err := store.CreateOrder(r.Context(), order); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		writeRaw(w, http.StatusCreated, map[string]string{"orderId": order.ID})
	}
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

// UpdateOrderStatus advances an order through the pipeline. Terminal orders
// reject further transitions. A PICKED_UP transition assigns the dev rider.
func UpdateOrderStatus(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := store.OrderByID(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		if enums.NormalizeOrderStatus(order.Status).IsTerminal() {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "order already finished"))
			return
		}

		order.Status = string(status)
		if status == enums.OrderStatusPickedUp {
			order.DeliveryPartnerName = "Ravi Kumar"
			order.DeliveryPartnerPhone = "9000000001"
		}
		if status == enums.OrderStatusRejected {
			order.RejectionReason = req.Reason
		}
		if err := store.UpdateOrder(r.Context(), order); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusOK, orderView(*order))
	}
}

// SubscriptionByID returns one subscription record.
func SubscriptionByID(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := store.SubscriptionByID(r.Context(), chi.URLParam(r, "subscriptionId"))
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeRaw(w, http.StatusOK, subscriptionView(*sub))
	}
}

// Addresses lists the caller's saved addresses as a bare array.
func Addresses(store *Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addresses, err := store.AddressesForUser(r.Context(), UserIDFromContext(r.Context()))
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}

		views := make([]types.Address, 0, len(addresses))
		for _, a := range addresses {
			views = append(views, addressView(a))
		}
		writeRaw(w, http.StatusOK, views)
	}
}

func cartLineView(item CartItem) types.CartLine {
	return types.CartLine{
		FoodID:   item.FoodID,
		FoodName: item.FoodName,
		Price:    item.Price,
		Quantity: item.Quantity,
		Subtotal: item.Subtotal(),
		ImageURL: item.ImageURL,
	}
}

func orderView(order Order) types.Order {
	items := make([]types.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, types.OrderItem{
			FoodID:         item.FoodID,
			MealName:       item.MealName,
			Quantity:       item.Quantity,
			PricePerItem:   item.PricePerItem,
			ImageURL:       item.ImageURL,
			Customizations: item.Customizations,
		})
	}
	return types.Order{
		OrderID:              order.ID,
		UserID:               order.UserID,
		Status:               order.Status,
		Items:                items,
		TotalAmount:          order.TotalAmount,
		Address:              order.Address,
		DeliveryPartnerName:  order.DeliveryPartnerName,
		DeliveryPartnerPhone: order.DeliveryPartnerPhone,
		RejectionReason:      order.RejectionReason,
		OrderDate:            order.CreatedAt,
	}
}

func subscriptionView(sub Subscription) types.Subscription {
	return types.Subscription{
		ID:              sub.ID,
		PlanName:        sub.PlanName,
		DiscountPercent: sub.DiscountPercent,
		Status:          sub.Status,
	}
}

func addressView(a Address) types.Address {
	return types.Address{
		ID:                   a.ID,
		FlatNoOrBuildingName: a.FlatNoOrBuildingName,
		Street:               a.Street,
		Landmark:             a.Landmark,
		City:                 a.City,
		State:                a.State,
		Pincode:              a.Pincode,
	}
}
