package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the service exports on /metrics.
type Metrics struct {
	// method, path, status_code
	HTTPRequestsTotal *prometheus.CounterVec
	// method, path
	HTTPRequestDuration *prometheus.HistogramVec

	// result: success, invalid, rejected, conflict, error
	ReservationsTotal *prometheus.CounterVec
	// result: success, rejected, conflict, error
	CancellationsTotal *prometheus.CounterVec

	// Optimistic writes that lost to a concurrent update.
	InventoryConflictsTotal prometheus.Counter
	// Releases of seats that were not booked.
	StaleReleasesTotal prometheus.Counter

	// status: success, busy, error
	DistributedLockDuration *prometheus.HistogramVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_reservations_total",
				Help: "Booking attempts by result",
			},
			[]string{"result"},
		),
		CancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_cancellations_total",
				Help: "Booking cancellations by result",
			},
			[]string{"result"},
		),
		InventoryConflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "inventory_conflicts_total",
				Help: "Inventory writes rejected because the showtime changed concurrently",
			},
		),
		StaleReleasesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "inventory_stale_releases_total",
				Help: "Released seats that were unknown or not booked",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent acquiring the per-showtime lock",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.CancellationsTotal,
		m.InventoryConflictsTotal,
		m.StaleReleasesTotal,
		m.DistributedLockDuration,
	)

	return m
}
