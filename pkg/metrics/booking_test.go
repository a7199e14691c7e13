package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBookingMetrics(reg)

	metrics.IncQuote("listing", true)
	metrics.IncQuote("listing", true)
	metrics.IncGateViolation("property_details")
	metrics.ObserveSubmission("accepted", 250*time.Millisecond)
	metrics.IncNotificationFailure("")
	metrics.IncCatalogCache(false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "booking_quotes_total", "contact_for_price", "true"); err != nil {
		t.Fatalf("fetch quotes: %v", err)
	} else if got != 2 {
		t.Fatalf("expected quotes=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "booking_gate_violations_total", "step", "property_details"); err != nil {
		t.Fatalf("fetch gate violations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected gate violations=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "booking_submissions_total", "outcome", "accepted"); err != nil {
		t.Fatalf("fetch submissions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected submissions=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "booking_submission_duration_seconds", "outcome", "accepted"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "booking_notification_failures_total", "sink", "unknown"); err != nil {
		t.Fatalf("fetch notify failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected empty sink to normalize to unknown, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "booking_catalog_cache_total", "result", "miss"); err != nil {
		t.Fatalf("fetch cache: %v", err)
	} else if got != 1 {
		t.Fatalf("expected cache miss=1, got %f", got)
	}
}

func TestNilBookingMetricsAreNoOps(t *testing.T) {
	var m *BookingMetrics
	m.IncQuote("listing", false)
	m.IncGateViolation("packages")
	m.ObserveSubmission("accepted", time.Second)

	unregistered := NewBookingMetrics(nil)
	unregistered.IncQuote("listing", false)
	unregistered.ObserveSubmission("invalid", time.Second)
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
