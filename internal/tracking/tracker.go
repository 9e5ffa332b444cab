package tracking

import (
	"context"
	"fmt"
	"sync"

	"github.com/tiffino/tiffino-go/internal/cart"
	"github.com/tiffino/tiffino-go/pkg/enums"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/metrics"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// Tab names the two order views.
type Tab string

const (
	TabOngoing Tab = "ongoing"
	TabHistory Tab = "history"
)

// Notifier surfaces non-fatal user-visible messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// ActiveView pairs an in-flight order with its position on the progress
// stepper.
type ActiveView struct {
	Order         types.Order
	ProgressIndex int
}

// activeOrder is one tracked in-flight order and the handle to stop its
// watcher.
type activeOrder struct {
	order    types.Order
	progress int
	cancel   context.CancelFunc
}

// Tracker maintains the live view of a user's orders. Each in-flight order
// gets its own independently cancellable watcher, so one order reaching a
// terminal status stops only its own polling. Terminal transitions archive
// the order into history exactly once, no matter how many late ticks land.
type Tracker struct {
	source    Source
	watcher   Watcher
	notify    Notifier
	celebrate func(types.Order)
	logg      *logger.Logger
	metrics   *metrics.TrackingMetrics

	mu       sync.Mutex
	active   map[string]*activeOrder
	ordering []string
	history  []types.Order
	archived map[string]bool
	tab      Tab

	wg sync.WaitGroup
}

// TrackerParams wires a Tracker. Celebrate is optional; it fires once per
// order on its first terminal transition.
type TrackerParams struct {
	Source    Source
	Watcher   Watcher
	Notifier  Notifier
	Celebrate func(types.Order)
	Logger    *logger.Logger
	Metrics   *metrics.TrackingMetrics
}

// NewTracker builds an order tracker.
func NewTracker(params TrackerParams) (*Tracker, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("order source required")
	}
	if params.Watcher == nil {
		return nil, fmt.Errorf("watcher required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Tracker{
		source:    params.Source,
		watcher:   params.Watcher,
		notify:    params.Notifier,
		celebrate: params.Celebrate,
		logg:      params.Logger,
		metrics:   params.Metrics,
		active:    make(map[string]*activeOrder),
		archived:  make(map[string]bool),
		tab:       TabHistory,
	}, nil
}

// Start loads the user's orders, partitions them into in-flight and
// history, and spawns a watcher per in-flight order. A failed load leaves
// both views empty rather than showing a stale list.
func (t *Tracker) Start(ctx context.Context, userID string) error {
	ctx = t.logg.WithUserID(ctx, userID)

	orders, err := t.source.OrdersByUser(ctx, userID)
	if err != nil {
		t.logg.Error(ctx, "tracking.load_failed", err)
		t.notify.Error("Failed to load orders")
		return err
	}

	t.mu.Lock()
	for _, order := range orders {
		status := enums.NormalizeOrderStatus(order.Status)
		if status.IsTerminal() {
			t.archived[order.OrderID] = true
			t.history = append(t.history, order)
			continue
		}

		watchCtx, cancel := context.WithCancel(ctx)
		t.active[order.OrderID] = &activeOrder{
			order:    order,
			progress: enums.ProgressIndex(order.Status),
			cancel:   cancel,
		}
		t.ordering = append(t.ordering, order.OrderID)

		t.wg.Add(1)
		go func(id string) {
			defer t.wg.Done()
			t.watcher.Watch(watchCtx, id, func(snapshot types.Order) {
				t.Apply(snapshot)
			})
		}(order.OrderID)
	}
	if len(t.active) > 0 {
		t.tab = TabOngoing
	} else {
		t.tab = TabHistory
	}
	t.mu.Unlock()

	return nil
}

// Apply folds a fresh order snapshot into the tracker. Snapshots for
// orders that already reached a terminal status are ignored, so a stray
// late tick cannot archive twice or resurrect an order.
func (t *Tracker) Apply(snapshot types.Order) {
	t.mu.Lock()

	ao, ok := t.active[snapshot.OrderID]
	if !ok {
		t.mu.Unlock()
		return
	}

	ao.order = snapshot
	ao.progress = enums.ProgressIndex(snapshot.Status)

	status := enums.NormalizeOrderStatus(snapshot.Status)
	if !status.IsTerminal() {
		t.mu.Unlock()
		return
	}

	delete(t.active, snapshot.OrderID)
	t.removeFromOrdering(snapshot.OrderID)
	ao.cancel()

	firstTime := !t.archived[snapshot.OrderID]
	if firstTime {
		t.archived[snapshot.OrderID] = true
		t.history = append([]types.Order{snapshot}, t.history...)
		t.metrics.IncTerminal(string(status))
	}
	t.tab = TabHistory
	t.mu.Unlock()

	if firstTime && t.celebrate != nil {
		t.celebrate(snapshot)
	}
}

// Active returns the in-flight orders in their load order.
func (t *Tracker) Active() []ActiveView {
	t.mu.Lock()
	defer t.mu.Unlock()
	views := make([]ActiveView, 0, len(t.ordering))
	for _, id := range t.ordering {
		if ao, ok := t.active[id]; ok {
			views = append(views, ActiveView{Order: ao.order, ProgressIndex: ao.progress})
		}
	}
	return views
}

// History returns the archived orders, most recently completed first.
func (t *Tracker) History() []types.Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.Order, len(t.history))
	copy(out, t.history)
	return out
}

// Tab reports which view is in front.
func (t *Tracker) Tab() Tab {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tab
}

// SetTab switches the visible view.
func (t *Tracker) SetTab(tab Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tab = tab
}

// Stop cancels every watcher and waits for them to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	for _, ao := range t.active {
		ao.cancel()
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// CartAdder is the slice of the cart engine reorder needs.
type CartAdder interface {
	AddLine(ctx context.Context, line types.CartLine) error
}

var _ CartAdder = (*cart.Engine)(nil)

// Reorder pushes a past order's item snapshots back into the cart at their
// historical quantity and price. It stops on the first failed add; the
// cart engine already surfaced that failure to the user.
func (t *Tracker) Reorder(ctx context.Context, order types.Order, adder CartAdder) error {
	if len(order.Items) == 0 {
		return nil
	}

	ctx = t.logg.WithOrderID(ctx, order.OrderID)
	for _, item := range order.Items {
		line := types.CartLine{
			FoodID:   item.FoodID,
			FoodName: item.MealName,
			Price:    item.PricePerItem,
			Quantity: item.Quantity,
			Subtotal: item.PricePerItem * item.Quantity,
			ImageURL: item.ImageURL,
		}
		if err := adder.AddLine(ctx, line); err != nil {
			t.logg.Error(ctx, "tracking.reorder_add_failed", err)
			return err
		}
	}

	t.notify.Success("Items added to cart!")
	return nil
}

func (t *Tracker) removeFromOrdering(orderID string) {
	for i, id := range t.ordering {
		if id == orderID {
			t.ordering = append(t.ordering[:i], t.ordering[i+1:]...)
			return
		}
	}
}
