package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/tiffino/tiffino-go/internal/cart"
	"github.com/tiffino/tiffino-go/internal/checkout"
	"github.com/tiffino/tiffino-go/internal/devserver"
	"github.com/tiffino/tiffino-go/internal/subscriptions"
	"github.com/tiffino/tiffino-go/internal/tracking"
	"github.com/tiffino/tiffino-go/pkg/config"
	"github.com/tiffino/tiffino-go/pkg/enums"
	"github.com/tiffino/tiffino-go/pkg/localstore"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/metrics"
	"github.com/tiffino/tiffino-go/pkg/rest"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// stdoutNotifier plays the toast layer's role for the terminal demo.
type stdoutNotifier struct{}

func (stdoutNotifier) Success(message string) { fmt.Println("[ok]   " + message) }
func (stdoutNotifier) Info(message string)    { fmt.Println("[info] " + message) }
func (stdoutNotifier) Error(message string)   { fmt.Println("[err]  " + message) }

func main() {
	logg := logger.New(logger.Options{ServiceName: "client"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "client",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "client demo failed", err)
		os.Exit(1)
	}
}

// run walks the full customer journey against the configured backend:
// login, fill the cart, place an order and track it to delivery.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	store, err := localstore.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var currentUser string
	notify := stdoutNotifier{}

	client, err := rest.New(rest.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
		Tokens:  rest.NewLocalTokenStore(store),
		OnUnauthorized: func(role enums.Role) {
			currentUser = ""
			notify.Error("Session expired, please login again")
		},
	}, logg)
	if err != nil {
		return err
	}

	identity := func() (string, bool) {
		return currentUser, currentUser != ""
	}

	engine, err := cart.NewEngine(cart.Params{
		API:      client,
		Identity: identity,
		Notifier: notify,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	subs, err := subscriptions.NewService(client, store, logg)
	if err != nil {
		return err
	}

	checkoutSvc, err := checkout.NewService(checkout.Params{
		API:           client,
		Subscriptions: subs,
		Cart:          engine,
		Profile: func() (checkout.Profile, bool) {
			if currentUser == "" {
				return checkout.Profile{}, false
			}
			return checkout.Profile{UserID: currentUser, Name: "Dev User", Phone: "9876543210"}, true
		},
		Logger: logg,
	})
	if err != nil {
		return err
	}

	trackingMetrics := metrics.NewTrackingMetrics(prometheus.DefaultRegisterer)
	watcher, err := tracking.NewPollWatcher(tracking.PollWatcherParams{
		Source:   client,
		Interval: cfg.Poll.Interval(),
		Logger:   logg,
		Metrics:  trackingMetrics,
	})
	if err != nil {
		return err
	}
	tracker, err := tracking.NewTracker(tracking.TrackerParams{
		Source:   client,
		Watcher:  watcher,
		Notifier: notify,
		Celebrate: func(order types.Order) {
			if enums.NormalizeOrderStatus(order.Status) == enums.OrderStatusRejected {
				notify.Info("Order " + order.OrderID + " was rejected")
				return
			}
			notify.Success("Delivered! Enjoy your meal (order " + order.OrderID + ")")
		},
		Logger:  logg,
		Metrics: trackingMetrics,
	})
	if err != nil {
		return err
	}

	token, err := client.Login(ctx, cfg.DevServer.SeedEmail, cfg.DevServer.SeedPassword)
	if err != nil {
		return err
	}
	// The demo targets the devserver, whose signing config is at hand, so
	// the user id can be read straight from the minted token.
	claims, err := devserver.ParseAccessToken(cfg.DevServer, token)
	if err != nil {
		return err
	}
	currentUser = claims.UserID
	logg.Info(logg.WithUserID(ctx, currentUser), "logged in")

	if subID := os.Getenv("TIFFINO_SUBSCRIPTION_ID"); subID != "" {
		if err := subs.SetActiveReference(subID); err != nil {
			return err
		}
	}

	if err := engine.AddItem(ctx, types.Dish{ID: "demo-thali", Name: "Veg Thali", Price: 220, Image: "thali.png"}); err != nil {
		return err
	}
	if err := engine.Increment(ctx, "demo-thali"); err != nil {
		return err
	}

	snapshot := engine.Snapshot()
	fmt.Printf("cart: %d items, total %d\n", snapshot.TotalItems, snapshot.TotalPrice)

	quote, err := checkoutSvc.Quote(ctx)
	if err != nil {
		return err
	}
	if len(quote.Addresses) == 0 {
		return fmt.Errorf("no saved addresses to deliver to")
	}
	fmt.Printf("bill: items %d, delivery %d, tax %d, discount %d, payable %d\n",
		quote.Bill.ItemTotal, quote.Bill.DeliveryFee, quote.Bill.Tax, quote.Bill.Discount, quote.Bill.GrandTotal)

	orderID, err := checkoutSvc.PlaceOrder(ctx, checkout.PlaceOrderInput{
		AddressID: quote.Addresses[0].ID,
		Notes:     "demo order",
	})
	if err != nil {
		return err
	}
	fmt.Println("placed order " + orderID)

	if err := tracker.Start(ctx, currentUser); err != nil {
		return err
	}
	defer tracker.Stop()

	g, gctx := errgroup.WithContext(ctx)

	// Stand in for the kitchen and the rider: walk the order through the
	// pipeline while the tracker polls it.
	g.Go(func() error {
		for _, status := range []string{"ACCEPTED", "PREPARING", "PICKED_UP", "DELIVERED"} {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-time.After(cfg.Poll.Interval() + time.Second):
			}
			if err := client.UpdateOrderStatus(gctx, orderID, status); err != nil {
				return err
			}
			fmt.Println("kitchen: order is now " + status)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
			}
			for _, view := range tracker.Active() {
				fmt.Printf("tracking %s: step %d (%s)\n", view.Order.OrderID, view.ProgressIndex, view.Order.Status)
			}
			if len(tracker.Active()) == 0 {
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("history now holds %d order(s)\n", len(tracker.History()))
	return nil
}
