package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TrackingMetrics records the order-tracking poll loop's behavior.
type TrackingMetrics struct {
	tickDuration *prometheus.HistogramVec
	ticks        *prometheus.CounterVec
	failures     *prometheus.CounterVec
	terminal     *prometheus.CounterVec
}

// NewTrackingMetrics registers the tracking metrics on the provided registerer.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	tickDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_poll_tick_duration_seconds",
		Help:    "Duration of order poll ticks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"watcher"})
	ticks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_poll_ticks",
		Help: "Completed order poll ticks.",
	}, []string{"watcher"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_poll_failures",
		Help: "Order poll ticks that failed and were skipped.",
	}, []string{"watcher"})
	terminal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_terminal_transitions",
		Help: "Orders observed reaching a terminal status.",
	}, []string{"status"})
	reg.MustRegister(tickDuration, ticks, failures, terminal)
	return &TrackingMetrics{
		tickDuration: tickDuration,
		ticks:        ticks,
		failures:     failures,
		terminal:     terminal,
	}
}

// ObserveTick records one completed poll tick and its duration.
func (m *TrackingMetrics) ObserveTick(watcher string, duration time.Duration) {
	if m == nil || m.ticks == nil {
		return
	}
	m.ticks.WithLabelValues(normalizeLabel(watcher)).Inc()
	m.tickDuration.WithLabelValues(normalizeLabel(watcher)).Observe(duration.Seconds())
}

// IncFailure records a skipped tick.
func (m *TrackingMetrics) IncFailure(watcher string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(watcher)).Inc()
}

// IncTerminal records an order reaching the given terminal status.
func (m *TrackingMetrics) IncTerminal(status string) {
	if m == nil || m.terminal == nil {
		return
	}
	m.terminal.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
