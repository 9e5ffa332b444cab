package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// CartAPI is the slice of the platform client the engine consumes.
type CartAPI interface {
	CartItems(ctx context.Context) ([]types.CartLine, error)
	CartTotal(ctx context.Context) (int, error)
	AddCartItem(ctx context.Context, line types.CartLine) error
	UpdateCartItem(ctx context.Context, foodID string, quantity int) error
	RemoveCartItem(ctx context.Context, foodID string) error
	ClearCart(ctx context.Context) error
}

// Notifier surfaces non-fatal user-visible messages, the toast layer's seam.
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Identity reports the currently signed-in user, if any. Injected so the
// engine never reaches into ambient session state.
type Identity func() (userID string, ok bool)

// Snapshot is a copy of the engine's mirror for rendering.
type Snapshot struct {
	Lines      []types.CartLine
	TotalItems int
	TotalPrice int
	Open       bool
}

// Engine maintains a client-visible mirror of the server-side cart. The
// server is the source of truth: every mutation is followed by a full
// reload, never an optimistic merge.
type Engine struct {
	api      CartAPI
	identity Identity
	notify   Notifier
	logg     *logger.Logger

	mu         sync.Mutex
	lines      []types.CartLine
	totalItems int
	totalPrice int
	open       bool

	// Reloads race when mutations fire in quick succession; each reload
	// takes a generation and only the newest one may apply its result.
	loadGen    uint64
	appliedGen uint64
}

// Params wires an Engine.
type Params struct {
	API      CartAPI
	Identity Identity
	Notifier Notifier
	Logger   *logger.Logger
}

// NewEngine builds a cart engine.
func NewEngine(params Params) (*Engine, error) {
	if params.API == nil {
		return nil, fmt.Errorf("cart api required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity source required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Engine{
		api:      params.API,
		identity: params.Identity,
		notify:   params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Load resynchronizes the mirror from the server. Without a signed-in user
// it resets to empty with no network call. On failure the mirror also
// resets to empty so stale lines are never displayed as current.
func (e *Engine) Load(ctx context.Context) error {
	if _, ok := e.identity(); !ok {
		e.reset()
		return nil
	}

	gen := e.nextLoadGen()

	lines, err := e.api.CartItems(ctx)
	if err != nil {
		e.logg.Error(ctx, "cart.load_failed", err)
		e.notify.Error("Failed to load cart")
		e.applyLoad(gen, nil, 0)
		return err
	}

	total, err := e.api.CartTotal(ctx)
	if err != nil {
		e.logg.Error(ctx, "cart.load_total_failed", err)
		e.notify.Error("Failed to load cart")
		e.applyLoad(gen, nil, 0)
		return err
	}

	e.applyLoad(gen, lines, total)
	return nil
}

// AddItem creates a quantity-1 line from the dish and resynchronizes.
// Requires a signed-in user; otherwise no network call is made.
func (e *Engine) AddItem(ctx context.Context, dish types.Dish) error {
	if _, ok := e.identity(); !ok {
		e.notify.Info("Please login to add to cart")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}

	line := types.CartLine{
		FoodID:   dish.ID,
		FoodName: dish.Name,
		Price:    dish.Price,
		Quantity: 1,
		Subtotal: dish.Price,
		ImageURL: dish.Image,
	}

	if err := e.api.AddCartItem(ctx, line); err != nil {
		e.logg.Error(ctx, "cart.add_failed", err)
		e.notify.Error("Failed to add item")
		return err
	}

	e.notify.Success("Added to cart")
	e.setOpen(true)
	_ = e.Load(ctx)
	return nil
}

// AddLine pushes a fully formed line to the server cart, preserving its
// quantity and price. Used by reorder, which restores historical snapshots
// rather than fresh quantity-1 picks. The caller owns user messaging.
func (e *Engine) AddLine(ctx context.Context, line types.CartLine) error {
	if _, ok := e.identity(); !ok {
		e.notify.Info("Please login to add to cart")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}

	if line.Quantity < 1 {
		line.Quantity = 1
	}
	line.Subtotal = line.Price * line.Quantity

	if err := e.api.AddCartItem(ctx, line); err != nil {
		e.logg.Error(ctx, "cart.add_line_failed", err)
		e.notify.Error("Failed to add item")
		return err
	}

	_ = e.Load(ctx)
	return nil
}

// Increment raises a line's quantity by one via an absolute-quantity update.
// Unknown lines are a no-op.
func (e *Engine) Increment(ctx context.Context, foodID string) error {
	qty, ok := e.Quantity(foodID)
	if !ok {
		return nil
	}

	if err := e.api.UpdateCartItem(ctx, foodID, qty+1); err != nil {
		e.logg.Error(ctx, "cart.increment_failed", err)
		e.notify.Error("Failed to update")
		return err
	}
	_ = e.Load(ctx)
	return nil
}

// Decrement lowers a line's quantity by one, flooring at 1. Removal is a
// distinct operation; decrement never issues a quantity-0 update.
func (e *Engine) Decrement(ctx context.Context, foodID string) error {
	qty, ok := e.Quantity(foodID)
	if !ok || qty <= 1 {
		return nil
	}

	if err := e.api.UpdateCartItem(ctx, foodID, qty-1); err != nil {
		e.logg.Error(ctx, "cart.decrement_failed", err)
		e.notify.Error("Failed to update")
		return err
	}
	_ = e.Load(ctx)
	return nil
}

// Remove deletes a line and resynchronizes.
func (e *Engine) Remove(ctx context.Context, foodID string) error {
	if err := e.api.RemoveCartItem(ctx, foodID); err != nil {
		e.logg.Error(ctx, "cart.remove_failed", err)
		e.notify.Error("Failed to remove")
		return err
	}

	e.notify.Success("Item removed")
	_ = e.Load(ctx)
	return nil
}

// ClearLocal empties the mirror without touching the server. Used on user
// switch and after a backend-confirmed clear.
func (e *Engine) ClearLocal() {
	e.reset()
}

// ClearBackend clears the server-side cart and always empties the mirror.
// A backend failure is logged, not surfaced: this runs post-checkout where
// the cart's continued existence no longer matters to the user.
func (e *Engine) ClearBackend(ctx context.Context) {
	if err := e.api.ClearCart(ctx); err != nil {
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "cart.backend_clear_failed")
	}
	e.reset()
}

// Quantity returns the mirrored quantity for a line.
func (e *Engine) Quantity(foodID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, line := range e.lines {
		if line.FoodID == foodID {
			return line.Quantity, true
		}
	}
	return 0, false
}

// Snapshot copies the mirror for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	lines := make([]types.CartLine, len(e.lines))
	copy(lines, e.lines)
	return Snapshot{
		Lines:      lines,
		TotalItems: e.totalItems,
		TotalPrice: e.totalPrice,
		Open:       e.open,
	}
}

// SetOpen toggles the cart drawer affordance.
func (e *Engine) SetOpen(open bool) {
	e.setOpen(open)
}

func (e *Engine) setOpen(open bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = open
}

func (e *Engine) nextLoadGen() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadGen++
	return e.loadGen
}

// applyLoad installs a reload result unless a newer reload has already
// completed; a superseded result is discarded so the last-arriving stale
// response cannot clobber fresher state.
func (e *Engine) applyLoad(gen uint64, lines []types.CartLine, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen < e.appliedGen {
		return
	}
	e.appliedGen = gen

	e.lines = lines
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	e.totalItems = count
	e.totalPrice = total
}

func (e *Engine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadGen++
	e.appliedGen = e.loadGen
	e.lines = nil
	e.totalItems = 0
	e.totalPrice = 0
}
