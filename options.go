package quickset

import "log/slog"

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	capacityHint     int
}

// Option configures Quickset constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for operations. Pass nil
// to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and
// sets it. Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCapacityHint sets the default capacity hint applied to tables
// created without an explicit one.
func WithCapacityHint(capacity int) Option {
	return func(o *options) {
		o.capacityHint = capacity
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
