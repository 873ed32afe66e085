// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the booking engine's collectors.  A nil *Metrics is valid
// and records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	BookingsCreated   *prometheus.CounterVec
	BookingsCancelled prometheus.Counter
	BookingConflicts  prometheus.Counter
	SeriesWeeks       *prometheus.CounterVec
	LocksPurged       prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "court_booking_bookings_created_total",
			Help: "Bookings created, by booking type.",
		}, []string{"type"}),

		BookingsCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "court_booking_bookings_cancelled_total",
			Help: "Bookings cancelled.",
		}),

		BookingConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "court_booking_conflicts_total",
			Help: "Booking attempts rejected because the slot was taken.",
		}),

		SeriesWeeks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "court_booking_series_weeks_total",
			Help: "Weekly occurrences processed by series bookings, by outcome.",
		}, []string{"outcome"}),

		LocksPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "court_booking_day_locks_purged_total",
			Help: "Stale court/day lock rows removed by the purge job.",
		}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "court_booking_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) BookingCreated(bookingType string) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(bookingType).Inc()
}

func (m *Metrics) BookingCancelled() {
	if m == nil {
		return
	}
	m.BookingsCancelled.Inc()
}

func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.BookingConflicts.Inc()
}

// SeriesWeek records one weekly occurrence of a series.
func (m *Metrics) SeriesWeek(ok bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if ok {
		outcome = "created"
	}
	m.SeriesWeeks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.LocksPurged.Add(float64(n))
}

// ObserveRequest records one HTTP request's latency in seconds.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
