package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestTrackingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTrackingMetrics(reg)
	watcher := "order-7"
	m.ObserveTick(watcher, 120*time.Millisecond)
	m.IncFailure(watcher)
	m.IncTerminal("DELIVERED")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "order_poll_ticks", "watcher", watcher); err != nil {
		t.Fatalf("fetch ticks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ticks=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_poll_failures", "watcher", watcher); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_terminal_transitions", "status", "DELIVERED"); err != nil {
		t.Fatalf("fetch terminal: %v", err)
	} else if got != 1 {
		t.Fatalf("expected terminal=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_poll_tick_duration_seconds", "watcher", watcher); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestTrackingMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewTrackingMetrics(nil)
	m.ObserveTick("w", time.Second)
	m.IncFailure("w")
	m.IncTerminal("REJECTED")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
