package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/metrics"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced("Paid")
		m.IDCollision("order")
		m.IDExhausted("order")
		m.CartConflict()
		m.Notification("broadcast", false)
		m.BroadcastDuration(1)
		m.PaymentVerification(true)
	})
	assert.NotNil(t, m.Handler())
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) (float64, bool) {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			var total float64
			for _, metric := range f.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
			return total, true
		}
	}
	return 0, false
}

func TestCounters(t *testing.T) {
	m := metrics.New()
	m.IDCollision("order")
	m.IDCollision("order")
	m.Notification("transactional", true)
	m.Notification("transactional", false)

	v, ok := counterValue(t, m.Gather(), "storefront_ids_collisions_total")
	require.True(t, ok)
	assert.Equal(t, float64(2), v)

	v, ok = counterValue(t, m.Gather(), "storefront_notifications_sent_total")
	require.True(t, ok)
	assert.Equal(t, float64(2), v)

	// Two instances do not share a registry.
	other := metrics.New()
	_, ok = counterValue(t, other.Gather(), "storefront_ids_collisions_total")
	assert.False(t, ok)
}
