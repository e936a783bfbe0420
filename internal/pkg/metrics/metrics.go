// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the HTTP and booking collectors.
type Metrics struct {
	// HTTP requests (method, path, status_code)
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP latency (method, path)
	HTTPRequestDuration *prometheus.HistogramVec

	// Seat lock attempts (operation: lock/unlock, result: ok/conflict/not_found/invalid/error)
	SeatLocksTotal *prometheus.CounterVec

	// Booking lifecycle operations (operation: create/cancel/payment, result)
	BookingsTotal *prometheus.CounterVec

	// Transactions retried after a lock wait timeout or deadlock
	TxRetriesTotal prometheus.Counter

	// Booking events that could not be published
	EventPublishFailures prometheus.Counter
}

// New creates collectors registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg.
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
		SeatLocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_locks_total",
				Help: "Seat lock and unlock attempts by result",
			},
			[]string{"operation", "result"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Booking lifecycle operations by result",
			},
			[]string{"operation", "result"},
		),
		TxRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "db_tx_retries_total",
				Help: "Transactions retried after a transient conflict",
			},
		),
		EventPublishFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "booking_event_publish_failures_total",
				Help: "Booking events that failed to publish",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatLocksTotal,
		m.BookingsTotal,
		m.TxRetriesTotal,
		m.EventPublishFailures,
	)

	return m
}

// Nop returns collectors registered on a throwaway registry, for
// components constructed without metrics.
func Nop() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

var defaultMetrics *Metrics

// Init initialises the default instance on the default registry.
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get returns the default instance.
func Get() *Metrics {
	return defaultMetrics
}
