package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus observability primitives for the storefront.
type Metrics struct {
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	webhookEvents   *prometheus.CounterVec
	paidTransitions *prometheus.CounterVec
	receiptRenders  *prometheus.CounterVec
	emailDeliveries *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics for telemetry.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_requests_total",
		Help: "Counts API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_duration_seconds",
		Help:    "API request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhook_events_total",
		Help: "Counts payment webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})

	paidTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_paid_transitions_total",
		Help: "Counts paid transitions by outcome (won, duplicate, miss).",
	}, []string{"outcome"})

	receiptRenders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_receipt_renders_total",
		Help: "Counts receipt PDF renders by status.",
	}, []string{"status"})

	emailDeliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_email_deliveries_total",
		Help: "Counts transactional email deliveries by recipient kind and status.",
	}, []string{"recipient", "status"})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		webhookEvents,
		paidTransitions,
		receiptRenders,
		emailDeliveries,
	)

	return &Metrics{
		apiRequests:     apiRequests,
		apiDuration:     apiDuration,
		webhookEvents:   webhookEvents,
		paidTransitions: paidTransitions,
		receiptRenders:  receiptRenders,
		emailDeliveries: emailDeliveries,
	}
}

func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordPaidTransition(outcome string) {
	if m == nil {
		return
	}
	m.paidTransitions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReceiptRender(status string) {
	if m == nil {
		return
	}
	m.receiptRenders.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordEmailDelivery(recipient, status string) {
	if m == nil {
		return
	}
	m.emailDeliveries.WithLabelValues(recipient, status).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.apiRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.apiDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
