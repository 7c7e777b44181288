package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/movies", "200").Inc()
	m.HTTPRequestDuration.WithLabelValues("GET", "/api/movies").Observe(0.01)
	m.ReservationsTotal.WithLabelValues("success").Inc()
	m.CancellationsTotal.WithLabelValues("success").Inc()
	m.InventoryConflictsTotal.Inc()
	m.StaleReleasesTotal.Inc()
	m.DistributedLockDuration.WithLabelValues("success").Observe(0.002)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"booking_reservations_total",
		"booking_cancellations_total",
		"inventory_conflicts_total",
		"inventory_stale_releases_total",
		"distributed_lock_duration_seconds",
	} {
		assert.True(t, names[name], name)
	}
}

func TestReservationsTotal(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ReservationsTotal.WithLabelValues("success").Inc()
	m.ReservationsTotal.WithLabelValues("success").Inc()
	m.ReservationsTotal.WithLabelValues("rejected").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ReservationsTotal))
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)
	assert.Panics(t, func() { NewWithRegistry(reg) })
}
