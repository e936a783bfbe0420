package service

import (
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/pkg/metrics"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// DefaultLockTTL is how long a seat lock batch stays active.
const DefaultLockTTL = 10 * time.Minute

type options struct {
	now     Clock
	lockTTL time.Duration
	metrics *metrics.Metrics
}

// Option configures the services of this package.
type Option func(*options)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.now = c }
}

// WithLockTTL sets the seat lock lifetime.  Non-positive values keep
// the default.
func WithLockTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockTTL = d
		}
	}
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: utcNow, lockTTL: DefaultLockTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.Nop()
	}
	return o
}

// resultLabel classifies err for the metrics "result" label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case repository.IsTransient(err):
		return "transient"
	default:
		return "error"
	}
}
