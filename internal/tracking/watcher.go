package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/metrics"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// defaultPollInterval is the live-tracking cadence.
const defaultPollInterval = 4 * time.Second

// Source is the slice of the platform client the tracker consumes.
type Source interface {
	OrderByID(ctx context.Context, orderID string) (*types.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]types.Order, error)
}

// Watcher streams snapshots of a single order until the context is
// canceled. The shipped implementation polls; a push-based watcher can be
// substituted without touching the tracker.
type Watcher interface {
	Watch(ctx context.Context, orderID string, fn func(types.Order))
}

// PollWatcher fetches the order on a fixed interval. A failed tick is
// logged and skipped; the next tick will likely succeed, so a single missed
// beat never surfaces to the user. There is no retry or backoff.
type PollWatcher struct {
	source   Source
	interval time.Duration
	logg     *logger.Logger
	metrics  *metrics.TrackingMetrics
}

// PollWatcherParams wires a PollWatcher.
type PollWatcherParams struct {
	Source   Source
	Interval time.Duration
	Logger   *logger.Logger
	Metrics  *metrics.TrackingMetrics
}

// NewPollWatcher builds the interval-based watcher.
func NewPollWatcher(params PollWatcherParams) (*PollWatcher, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("order source required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &PollWatcher{
		source:   params.Source,
		interval: interval,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Watch polls the order until ctx is canceled, invoking fn with each
// successfully fetched snapshot.
func (w *PollWatcher) Watch(ctx context.Context, orderID string, fn func(types.Order)) {
	ctx = w.logg.WithOrderID(ctx, orderID)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			order, err := w.source.OrderByID(ctx, orderID)
			if err != nil {
				w.logg.Error(ctx, "tracking.poll_failed", err)
				w.metrics.IncFailure(orderID)
				continue
			}
			w.metrics.ObserveTick(orderID, time.Since(start))
			fn(*order)
		}
	}
}
