package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Payment metrics
	PaymentsCreatedTotal    *prometheus.CounterVec
	PaymentAmountTotal      *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	// Webhook metrics
	WebhookEventsTotal     *prometheus.CounterVec
	StatusTransitionsTotal *prometheus.CounterVec
	WebhookDuplicatesTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "altopay"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		PaymentsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payments",
				Name:      "created_total",
				Help:      "Total number of payment attempts created",
			},
			[]string{"provider", "method", "status"},
		),
		PaymentAmountTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payments",
				Name:      "amount_total",
				Help:      "Total amount of created payments in minor currency units",
			},
			[]string{"provider", "method"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "request_duration_seconds",
				Help:      "Outbound provider call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "operation"},
		),

		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhooks",
				Name:      "events_total",
				Help:      "Total number of webhook events received",
			},
			[]string{"provider", "event_type", "result"},
		),
		StatusTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhooks",
				Name:      "status_transitions_total",
				Help:      "Total number of ledger status transitions applied",
			},
			[]string{"provider", "from", "to"},
		),
		WebhookDuplicatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhooks",
				Name:      "duplicates_total",
				Help:      "Total number of duplicate webhook deliveries skipped",
			},
			[]string{"provider"},
		),
	}
}

// RecordHTTPRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPaymentCreated records a created payment attempt.
func (m *Metrics) RecordPaymentCreated(provider, method, status string, amount int64) {
	m.PaymentsCreatedTotal.WithLabelValues(provider, method, status).Inc()
	m.PaymentAmountTotal.WithLabelValues(provider, method).Add(float64(amount))
}

// RecordWebhookEvent records a processed webhook event.
func (m *Metrics) RecordWebhookEvent(provider, eventType, result string) {
	m.WebhookEventsTotal.WithLabelValues(provider, eventType, result).Inc()
}

// RecordStatusTransition records an applied status transition.
func (m *Metrics) RecordStatusTransition(provider, from, to string) {
	m.StatusTransitionsTotal.WithLabelValues(provider, from, to).Inc()
}
