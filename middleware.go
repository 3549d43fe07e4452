package gantry

import (
	"context"

	"go.uber.org/zap"
)

// Middleware provides hooks for intercepting container operations.
// Middleware can be used for logging, metrics, security, testing, etc.
type Middleware interface {
	// BeforeResolve is called before resolving a service.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, id string) error

	// AfterResolve is called after resolving a service.
	// Called even if resolution failed (service and err may both be set).
	AfterResolve(ctx context.Context, id string, service any, err error) error

	// BeforeBuild is called before constructing a service that is not
	// cached yet. Return error to abort the build.
	BeforeBuild(ctx context.Context, id string) error

	// AfterBuild is called after a service finished building.
	// Called even if the build failed.
	AfterBuild(ctx context.Context, id string, service any, err error) error

	// BeforeCall is called before a configured method call runs on a
	// service, including deferred calls when they flush.
	BeforeCall(ctx context.Context, id string, method string) error

	// AfterCall is called after a configured method call ran.
	// Called even if the call failed.
	AfterCall(ctx context.Context, id string, method string, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{
		middleware: make([]Middleware, 0),
	}
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	m.middleware = append(m.middleware, middleware)
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, id string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, id string, service any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterResolve(ctx, id, service, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// beforeBuild calls BeforeBuild on all middleware.
func (m *middlewareChain) beforeBuild(ctx context.Context, id string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeBuild(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// afterBuild calls AfterBuild on all middleware.
func (m *middlewareChain) afterBuild(ctx context.Context, id string, service any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterBuild(ctx, id, service, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// beforeCall calls BeforeCall on all middleware.
func (m *middlewareChain) beforeCall(ctx context.Context, id string, method string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeCall(ctx, id, method); err != nil {
			return err
		}
	}
	return nil
}

// afterCall calls AfterCall on all middleware.
func (m *middlewareChain) afterCall(ctx context.Context, id string, method string, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterCall(ctx, id, method, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, id string) error
	AfterResolveFunc  func(ctx context.Context, id string, service any, err error) error
	BeforeBuildFunc   func(ctx context.Context, id string) error
	AfterBuildFunc    func(ctx context.Context, id string, service any, err error) error
	BeforeCallFunc    func(ctx context.Context, id string, method string) error
	AfterCallFunc     func(ctx context.Context, id string, method string, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, id string) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, id)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, id string, service any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, id, service, err)
	}
	return nil
}

// BeforeBuild implements Middleware.
func (f *FuncMiddleware) BeforeBuild(ctx context.Context, id string) error {
	if f.BeforeBuildFunc != nil {
		return f.BeforeBuildFunc(ctx, id)
	}
	return nil
}

// AfterBuild implements Middleware.
func (f *FuncMiddleware) AfterBuild(ctx context.Context, id string, service any, err error) error {
	if f.AfterBuildFunc != nil {
		return f.AfterBuildFunc(ctx, id, service, err)
	}
	return nil
}

// BeforeCall implements Middleware.
func (f *FuncMiddleware) BeforeCall(ctx context.Context, id string, method string) error {
	if f.BeforeCallFunc != nil {
		return f.BeforeCallFunc(ctx, id, method)
	}
	return nil
}

// AfterCall implements Middleware.
func (f *FuncMiddleware) AfterCall(ctx context.Context, id string, method string, err error) error {
	if f.AfterCallFunc != nil {
		return f.AfterCallFunc(ctx, id, method, err)
	}
	return nil
}

// LoggingMiddleware logs container operations through a zap logger.
type LoggingMiddleware struct {
	log *zap.Logger
}

// NewLoggingMiddleware creates middleware that logs resolves, builds and
// method calls at debug level and failures at warn level.
func NewLoggingMiddleware(log *zap.Logger) *LoggingMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMiddleware{log: log}
}

// BeforeResolve implements Middleware.
func (l *LoggingMiddleware) BeforeResolve(ctx context.Context, id string) error {
	l.log.Debug("resolving service", zap.String("service", id))
	return nil
}

// AfterResolve implements Middleware.
func (l *LoggingMiddleware) AfterResolve(ctx context.Context, id string, service any, err error) error {
	if err != nil {
		l.log.Warn("resolve failed", zap.String("service", id), zap.Error(err))
		return nil
	}
	l.log.Debug("resolved service", zap.String("service", id))
	return nil
}

// BeforeBuild implements Middleware.
func (l *LoggingMiddleware) BeforeBuild(ctx context.Context, id string) error {
	l.log.Debug("building service", zap.String("service", id))
	return nil
}

// AfterBuild implements Middleware.
func (l *LoggingMiddleware) AfterBuild(ctx context.Context, id string, service any, err error) error {
	if err != nil {
		l.log.Warn("build failed", zap.String("service", id), zap.Error(err))
		return nil
	}
	l.log.Debug("built service", zap.String("service", id))
	return nil
}

// BeforeCall implements Middleware.
func (l *LoggingMiddleware) BeforeCall(ctx context.Context, id string, method string) error {
	l.log.Debug("calling method", zap.String("service", id), zap.String("method", method))
	return nil
}

// AfterCall implements Middleware.
func (l *LoggingMiddleware) AfterCall(ctx context.Context, id string, method string, err error) error {
	if err != nil {
		l.log.Warn("method call failed", zap.String("service", id), zap.String("method", method), zap.Error(err))
		return nil
	}
	return nil
}
