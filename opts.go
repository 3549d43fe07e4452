package gantry

import "go.uber.org/zap"

// Option configures a container at construction.
type Option func(*containerImpl)

// WithLogger sets the logger for container debug events. The default is a
// no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *containerImpl) {
		if log != nil {
			c.log = log
		}
	}
}

// WithIntrospector replaces the default reflection-based signature
// introspector.
func WithIntrospector(in Introspector) Option {
	return func(c *containerImpl) {
		if in != nil {
			c.introspect = in
		}
	}
}

// WithAutowire sets the initial auto-wiring flag.
func WithAutowire(enabled bool) Option {
	return func(c *containerImpl) {
		c.autowire = enabled
	}
}

// WithFullReference sets the initial full-reference flag.
func WithFullReference(enabled bool) Option {
	return func(c *containerImpl) {
		c.fullReference = enabled
	}
}
