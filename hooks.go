package respond

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

// Hook is a deferred lifecycle action. Hooks may do asynchronous work; the
// chain waits for each hook to return before firing the next one.
type Hook func(ctx context.Context) error

const (
	chainIdle int32 = iota
	chainRunning
	chainDone
)

// hookChain is an ordered list of hooks that fires at most once, even when
// multiple code paths (normal completion, error path) race to trigger it.
// The single-assignment state swap is the only guard; no lock is held while
// hooks run.
type hookChain struct {
	name  string
	state atomic.Int32

	mu    sync.Mutex
	hooks []Hook
}

// register appends a hook. Registering after the chain ran fails with
// ErrChainAlreadyRun; already-run hooks are never re-invoked. The state is
// checked under the same lock run takes for its snapshot, so a registration
// racing run either makes the snapshot or gets the error, never a silent
// drop.
func (c *hookChain) register(h Hook) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Load() != chainIdle {
		return ErrChainAlreadyRun
	}

	c.hooks = append(c.hooks, h)

	return nil
}

// run fires the chain at most once, in registration order. A failing hook
// does not stop its siblings; failures are aggregated into one [*HookError].
// Callers that lose the race to trigger the chain get nil.
func (c *hookChain) run(ctx context.Context) error {
	if !c.state.CompareAndSwap(chainIdle, chainRunning) {
		return nil
	}
	defer c.state.Store(chainDone)

	c.mu.Lock()
	hooks := c.hooks
	c.mu.Unlock()

	var errs error
	for _, h := range hooks {
		errs = multierr.Append(errs, h(ctx))
	}

	if errs != nil {
		return &HookError{Chain: c.name, Err: errs}
	}

	return nil
}

// disarm marks an idle chain as done without invoking its hooks. The error
// path commits a failure response without giving the application's
// on-starting hooks a say.
func (c *hookChain) disarm() {
	c.state.CompareAndSwap(chainIdle, chainDone)
}
