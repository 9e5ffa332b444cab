package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiffino/tiffino-go/pkg/config"
	"github.com/tiffino/tiffino-go/pkg/logger"
)

// NewRouter assembles the dev backend's HTTP surface. The paths mirror the
// production services the client talks to, so pointing the client at this
// server requires only a base URL change.
func NewRouter(cfg config.DevServerConfig, store *Store, logg *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RequestID(logg),
		Logging(logg),
		Recoverer(logg),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/userlog/auth/login", Login(cfg, store, logg))

	r.Group(func(r chi.Router) {
		r.Use(Auth(cfg, logg))

		r.Route("/usercart", func(r chi.Router) {
			r.Get("/items", CartItems(store, logg))
			r.Post("/items", AddCartItem(store, logg))
			r.Put("/items", UpdateCartItem(store, logg))
			r.Delete("/items", RemoveCartItem(store, logg))
			r.Get("/total", CartTotal(store, logg))
			r.Delete("/clear", ClearCart(store, logg))
		})

		r.Route("/userorder/orders", func(r chi.Router) {
			r.Post("/checkout", Checkout(store, logg))
			r.Get("/user/{userId}", OrdersByUser(store, logg))
			r.Get("/{orderId}", OrderByID(store, logg))
			r.Put("/{orderId}/status", UpdateOrderStatus(store, logg))
		})

		r.Get("/usersubscription/subscriptions/{subscriptionId}", SubscriptionByID(store, logg))
		r.Get("/userlog/addresses/all", Addresses(store, logg))
	})

	return r
}
