package gantry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// =============================================================================
// DELAYED CALL QUEUE
// =============================================================================

// delayedCall is a queued method invocation waiting for a service to finish
// building.
type delayedCall struct {
	waitingFor string
	caller     string
	method     string
	args       []Arg
}

// delayedCalls holds pending invocations keyed by the id they wait on, in
// insertion order per key.
type delayedCalls struct {
	pending map[string][]delayedCall
	mu      sync.Mutex
}

func newDelayedCalls() *delayedCalls {
	return &delayedCalls{pending: make(map[string][]delayedCall)}
}

// add queues dc under the id it waits for.
func (d *delayedCalls) add(dc delayedCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[dc.waitingFor] = append(d.pending[dc.waitingFor], dc)
}

// take removes and returns the calls waiting on id, oldest first.
func (d *delayedCalls) take(id string) []delayedCall {
	d.mu.Lock()
	defer d.mu.Unlock()

	calls := d.pending[id]
	delete(d.pending, id)
	return calls
}

// pendingFor lists the methods a caller still has queued, sorted for stable
// diagnostics.
func (d *delayedCalls) pendingFor(caller string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	for _, calls := range d.pending {
		for _, dc := range calls {
			if dc.caller == caller {
				out = append(out, dc.method)
			}
		}
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// CALL INVOCATION
// =============================================================================

// invokeCall runs one declared method call on instance. A loaded-only
// reference whose target is not cached defers the whole call until that
// target finishes building.
func (c *containerImpl) invokeCall(id string, instance any, call CallSpec) error {
	for _, a := range call.Args {
		if a.Kind != ArgLoadedRef || c.Loaded(a.Target) {
			continue
		}

		c.delayed.add(delayedCall{
			waitingFor: a.Target,
			caller:     id,
			method:     call.Method,
			args:       call.Args,
		})
		c.log.Debug("call deferred",
			zap.String("service", id),
			zap.String("method", call.Method),
			zap.String("waiting_for", a.Target))
		return nil
	}

	ctx := context.Background()
	if err := c.middleware.beforeCall(ctx, id, call.Method); err != nil {
		return err
	}

	err := c.callMethod(id, instance, call)

	if mwErr := c.middleware.afterCall(ctx, id, call.Method, err); mwErr != nil {
		return mwErr
	}

	return err
}

// callMethod resolves the method's arguments and invokes it. A trailing error
// result aborts the build of the owning service.
func (c *containerImpl) callMethod(id string, instance any, call CallSpec) error {
	rv := reflect.ValueOf(instance)
	method := rv.MethodByName(call.Method)
	if !method.IsValid() {
		return ErrMethodNotFound(id, call.Method)
	}

	values, err := c.resolveCallArgs(method.Type(), call.Args)
	if err != nil {
		return NewBuildError(id, "call", fmt.Errorf("%s: %w", call.Method, err))
	}

	results := method.Call(values)

	if n := len(results); n > 0 {
		if last := results[n-1]; last.Type().Implements(errorType) && !last.IsNil() {
			return NewBuildError(id, "call",
				fmt.Errorf("%s: %w", call.Method, last.Interface().(error)))
		}
	}

	return nil
}

// flushDelayed replays the calls waiting on id after its fresh build, oldest
// first. A replayed call may defer again on another unloaded id. The caller
// must already sit in the cache; a missing caller means its build never
// completed.
func (c *containerImpl) flushDelayed(id string) error {
	for _, dc := range c.delayed.take(id) {
		c.mu.RLock()
		instance, ok := c.instances[dc.caller]
		c.mu.RUnlock()
		if !ok {
			return NewBuildError(dc.caller, "deferred call", ErrServiceNotLoaded(dc.caller))
		}

		c.log.Debug("flushing deferred call",
			zap.String("service", dc.caller),
			zap.String("method", dc.method),
			zap.String("waited_for", id))

		if err := c.invokeCall(dc.caller, instance, CallSpec{Method: dc.method, Args: dc.args}); err != nil {
			return err
		}
	}
	return nil
}
