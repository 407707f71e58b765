// Package metrics holds the Prometheus collectors of the storefront service.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	registry *prometheus.Registry

	ordersPlaced      *prometheus.CounterVec
	idCollisions      *prometheus.CounterVec
	idExhausted       *prometheus.CounterVec
	cartConflicts     prometheus.Counter
	notifications     *prometheus.CounterVec
	broadcastDuration prometheus.Histogram
	paymentChecks     *prometheus.CounterVec
}

// New creates the collectors on a private registry, so several instances can
// coexist in one process (tests).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "placed_total",
			Help: "Orders persisted, by payment status.",
		}, []string{"payment_status"}),
		idCollisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ids", Name: "collisions_total",
			Help: "Identifier candidates rejected by a uniqueness constraint.",
		}, []string{"space"}),
		idExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ids", Name: "exhausted_total",
			Help: "Identifier allocations that ran out of attempts.",
		}, []string{"space"}),
		cartConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cart", Name: "version_conflicts_total",
			Help: "Cart writes retried because of a concurrent update.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "notifications", Name: "sent_total",
			Help: "Outbound mail attempts, by kind and result.",
		}, []string{"kind", "result"}),
		broadcastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "notifications", Name: "broadcast_duration_seconds",
			Help:    "Wall time of a broadcast fan-out.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		paymentChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "payments", Name: "verifications_total",
			Help: "Payment callback verifications, by outcome.",
		}, []string{"valid"}),
	}
	reg.MustRegister(
		m.ordersPlaced, m.idCollisions, m.idExhausted, m.cartConflicts,
		m.notifications, m.broadcastDuration, m.paymentChecks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderPlaced(paymentStatus string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(paymentStatus).Inc()
}

func (m *Metrics) IDCollision(space string) {
	if m == nil {
		return
	}
	m.idCollisions.WithLabelValues(space).Inc()
}

func (m *Metrics) IDExhausted(space string) {
	if m == nil {
		return
	}
	m.idExhausted.WithLabelValues(space).Inc()
}

func (m *Metrics) CartConflict() {
	if m == nil {
		return
	}
	m.cartConflicts.Inc()
}

// Notification records one mail attempt. kind is "transactional" or "broadcast".
func (m *Metrics) Notification(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) BroadcastDuration(seconds float64) {
	if m == nil {
		return
	}
	m.broadcastDuration.Observe(seconds)
}

func (m *Metrics) PaymentVerification(valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.paymentChecks.WithLabelValues(label).Inc()
}

// Gather exposes the registry for tests.
func (m *Metrics) Gather() prometheus.Gatherer {
	return m.registry
}
