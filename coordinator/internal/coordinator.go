package internal

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/e7canasta/aura-rendersync/frameclock"
	"github.com/e7canasta/aura-rendersync/transform"
)

// Public API errors for coordinator operations.
var (
	ErrCallbackRegistered = errors.New("frame callback already registered")
	ErrNilCallback        = errors.New("frame callback cannot be nil")
	ErrNilClock           = errors.New("clock cannot be nil")
	ErrNilTracker         = errors.New("tracker cannot be nil")
)

// subscriberID is the coordinator's identity on the clock. One
// coordinator per clock; a second Register on the same clock would be
// rejected by the clock itself.
const subscriberID = "render-coordinator"

// DefaultStaleFrameLimit is the number of consecutive ticks without a
// fresh tracker sample after which the cached result is delivered
// hidden (~0.5s at 60 Hz).
const DefaultStaleFrameLimit = 30

// Coordinator binds clock ticks to transform solves.
//
// Thread-safety: all mutable state is guarded by mu. The tick path
// (onTick) runs on the clock's delivery goroutine; Register/
// Unregister/SetViewport/Release run on caller goroutines. The clock's
// synchronous Unsubscribe guarantees no onTick is in flight once
// UnregisterFrameCallback returns, so callbacks are invoked outside mu
// without racing teardown.
type Coordinator struct {
	clock   frameclock.Clock
	tracker TrackerSource

	mu         sync.Mutex
	cb         FrameCallback
	registered bool
	viewport   transform.Viewport
	solverCfg  transform.Config
	staleLimit int

	cached    transform.Result
	hasCached bool
	missed    int

	// Stats counters. Atomic so Stats() never contends with the tick
	// path.
	framesDelivered atomic.Uint64
	solverFaults    atomic.Uint64
	cacheServed     atomic.Uint64
	staleBlanks     atomic.Uint64
}

// NewCoordinator wires a coordinator to its clock and tracker.
func NewCoordinator(clock frameclock.Clock, tracker TrackerSource, viewport transform.Viewport, solverCfg transform.Config, staleLimit int) (*Coordinator, error) {
	if clock == nil {
		return nil, ErrNilClock
	}
	if tracker == nil {
		return nil, ErrNilTracker
	}
	if solverCfg == (transform.Config{}) {
		solverCfg = transform.DefaultConfig()
	}
	if err := solverCfg.Validate(); err != nil {
		return nil, err
	}
	if staleLimit <= 0 {
		staleLimit = DefaultStaleFrameLimit
	}

	return &Coordinator{
		clock:      clock,
		tracker:    tracker,
		viewport:   viewport,
		solverCfg:  solverCfg,
		staleLimit: staleLimit,
	}, nil
}

// RegisterFrameCallback subscribes the coordinator to its clock and
// begins delivering per-tick results to cb.
//
// Returns ErrNilCallback for a nil cb, ErrCallbackRegistered if a
// callback is already active. Re-registering after Unregister is
// allowed; the cache survives across the gap.
func (c *Coordinator) RegisterFrameCallback(cb FrameCallback) error {
	if cb == nil {
		return ErrNilCallback
	}

	c.mu.Lock()
	if c.registered {
		c.mu.Unlock()
		return ErrCallbackRegistered
	}
	c.cb = cb
	c.registered = true
	c.mu.Unlock()

	if err := c.clock.Subscribe(subscriberID, c.onTick); err != nil {
		c.mu.Lock()
		c.cb = nil
		c.registered = false
		c.mu.Unlock()
		return err
	}

	slog.Info("coordinator: frame callback registered", "subscriber", subscriberID)
	return nil
}

// UnregisterFrameCallback detaches the callback. Synchronous: once it
// returns, no further callback fires. Safe to call when not
// registered.
//
// MUST NOT be called from inside the frame callback.
func (c *Coordinator) UnregisterFrameCallback() {
	c.mu.Lock()
	wasRegistered := c.registered
	c.mu.Unlock()

	if !wasRegistered {
		return
	}

	// Unsubscribe first: the clock blocks until any in-flight dispatch
	// completes, so clearing cb afterwards cannot race a tick.
	c.clock.Unsubscribe(subscriberID)

	c.mu.Lock()
	c.cb = nil
	c.registered = false
	c.mu.Unlock()

	slog.Info("coordinator: frame callback unregistered", "subscriber", subscriberID)
}

// SetViewport updates screen dimensions for subsequent solves. Invalid
// dimensions are rejected with a warning; the previous viewport stays
// in effect.
func (c *Coordinator) SetViewport(vp transform.Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		slog.Warn("coordinator: rejecting invalid viewport",
			"width", vp.Width, "height", vp.Height)
		return
	}

	c.mu.Lock()
	c.viewport = vp
	c.mu.Unlock()
}

// Release detaches from the clock and drops cached state. Idempotent;
// safe to call without a prior Register.
func (c *Coordinator) Release() {
	c.UnregisterFrameCallback()

	c.mu.Lock()
	c.cached = transform.Result{}
	c.hasCached = false
	c.missed = 0
	c.mu.Unlock()
}

// Stats returns an operational snapshot (non-blocking).
func (c *Coordinator) Stats() Stats {
	return Stats{
		FramesDelivered: c.framesDelivered.Load(),
		SolverFaults:    c.solverFaults.Load(),
		CacheServed:     c.cacheServed.Load(),
		StaleBlanks:     c.staleBlanks.Load(),
	}
}

// onTick is the clock subscriber. Runs on the delivery goroutine.
func (c *Coordinator) onTick(ft frameclock.FrameTime) {
	c.mu.Lock()
	cb := c.cb
	if cb == nil {
		c.mu.Unlock()
		return
	}

	res := c.resolveLocked(ft)
	c.mu.Unlock()

	cb(res, ft)
	c.framesDelivered.Add(1)
}

// resolveLocked produces the result for one tick. Caller holds mu.
func (c *Coordinator) resolveLocked(ft frameclock.FrameTime) transform.Result {
	pose, cam, fresh := c.tracker.Sample()

	if fresh {
		res, err := transform.Solve(pose, cam, c.viewport, c.solverCfg)
		if err == nil {
			c.cached = res
			c.hasCached = true
			c.missed = 0
			return res
		}

		// Degenerate tracker data: bridge with the cache and count the
		// tick as missed so persistent faults eventually hide the
		// overlay.
		c.solverFaults.Add(1)
		slog.Warn("coordinator: solve failed, serving cached result",
			"frame", ft.FrameIndex, "error", err)
	}

	c.missed++
	c.cacheServed.Add(1)

	if !c.hasCached {
		return transform.Result{Visible: false}
	}

	res := c.cached
	if c.missed >= c.staleLimit {
		if res.Visible {
			c.staleBlanks.Add(1)
		}
		res.Visible = false
	}
	return res
}
