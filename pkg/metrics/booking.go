package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records quote, gate and submission activity of the booking flow.
type BookingMetrics struct {
	quotes           *prometheus.CounterVec
	gateViolations   *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	submissionTime   *prometheus.HistogramVec
	notifyFailures   *prometheus.CounterVec
	catalogCacheHits *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_quotes_total",
		Help: "Price quotes computed, by service line and contact-for-price state.",
	}, []string{"service_line", "contact_for_price"})
	gateViolations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_gate_violations_total",
		Help: "Refused step transitions, by the step the session was on.",
	}, []string{"step"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_submissions_total",
		Help: "Booking submissions, by outcome.",
	}, []string{"outcome"})
	submissionTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_submission_duration_seconds",
		Help:    "Duration of booking submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	notifyFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_notification_failures_total",
		Help: "Post-submission notifications that failed, by sink.",
	}, []string{"sink"})
	catalogCacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_catalog_cache_total",
		Help: "Catalog snapshot cache lookups, by result.",
	}, []string{"result"})
	reg.MustRegister(quotes, gateViolations, submissions, submissionTime, notifyFailures, catalogCacheHits)
	return &BookingMetrics{
		quotes:           quotes,
		gateViolations:   gateViolations,
		submissions:      submissions,
		submissionTime:   submissionTime,
		notifyFailures:   notifyFailures,
		catalogCacheHits: catalogCacheHits,
	}
}

func (m *BookingMetrics) IncQuote(serviceLine string, contactForPrice bool) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(serviceLine), strconv.FormatBool(contactForPrice)).Inc()
}

func (m *BookingMetrics) IncGateViolation(step string) {
	if m == nil || m.gateViolations == nil {
		return
	}
	m.gateViolations.WithLabelValues(normalizeLabel(step)).Inc()
}

// ObserveSubmission counts a submission and records how long it took.
func (m *BookingMetrics) ObserveSubmission(outcome string, duration time.Duration) {
	if m == nil || m.submissions == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.submissions.WithLabelValues(label).Inc()
	m.submissionTime.WithLabelValues(label).Observe(duration.Seconds())
}

func (m *BookingMetrics) IncNotificationFailure(sink string) {
	if m == nil || m.notifyFailures == nil {
		return
	}
	m.notifyFailures.WithLabelValues(normalizeLabel(sink)).Inc()
}

// IncCatalogCache records a cache hit or miss.
func (m *BookingMetrics) IncCatalogCache(hit bool) {
	if m == nil || m.catalogCacheHits == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.catalogCacheHits.WithLabelValues(result).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
