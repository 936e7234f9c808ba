package store

import (
	"time"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
	"github.com/AntonStoeckl/cancellable-actions-go/journal"
)

// options holds the state-independent configuration of a Store.
type options struct {
	journal          journal.Appender
	clock            func() time.Time
	logger           actions.Logger
	contextualLogger actions.ContextualLogger
	metricsCollector actions.MetricsCollector
	tracingCollector actions.TracingCollector
}

// Option defines a functional option for configuring a Store.
type Option func(*options) error

// WithJournal makes the store append every applied mutation to j.
func WithJournal(j journal.Appender) Option {
	return func(o *options) error {
		if j == nil {
			return ErrNilJournal
		}

		o.journal = j

		return nil
	}
}

// WithClock replaces time.Now as the source of commit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return ErrNilClock
		}

		o.clock = clock

		return nil
	}
}

// WithLogger sets the logger for the Store.
//
// Debug level: applied mutations and dispatches
// Error level: failed mutations and journal failures.
func WithLogger(logger actions.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
func WithContextualLogger(logger actions.ContextualLogger) Option {
	return func(o *options) error {
		o.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
func WithMetrics(collector actions.MetricsCollector) Option {
	return func(o *options) error {
		o.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store. Every dispatch gets its own span.
func WithTracing(collector actions.TracingCollector) Option {
	return func(o *options) error {
		o.tracingCollector = collector
		return nil
	}
}
