package coordinator

import (
	"github.com/e7canasta/aura-rendersync/coordinator/internal"
	"github.com/e7canasta/aura-rendersync/frameclock"
	"github.com/e7canasta/aura-rendersync/transform"
)

// TrackerSource is re-exported from the internal package.
// See internal/types.go for full documentation.
type TrackerSource = internal.TrackerSource

// FrameCallback is re-exported from the internal package.
// See internal/types.go for full documentation.
type FrameCallback = internal.FrameCallback

// Stats is re-exported from the internal package.
// See internal/types.go for full documentation.
type Stats = internal.Stats

// Public API errors - re-exported as a stable contract.
var (
	ErrCallbackRegistered = internal.ErrCallbackRegistered
	ErrNilCallback        = internal.ErrNilCallback
	ErrNilClock           = internal.ErrNilClock
	ErrNilTracker         = internal.ErrNilTracker
)

// DefaultStaleFrameLimit is the consecutive-missed-sample count after
// which cached results are delivered hidden.
const DefaultStaleFrameLimit = internal.DefaultStaleFrameLimit

// Config carries coordinator construction parameters.
type Config struct {
	// Viewport is the initial screen dimensions. Updatable at runtime
	// via SetViewport.
	Viewport transform.Viewport

	// Solver configures the transform pipeline. Zero value selects
	// transform.DefaultConfig().
	Solver transform.Config

	// StaleFrameLimit is the consecutive ticks without a fresh tracker
	// sample before cached results are delivered with Visible forced
	// to false. Zero selects DefaultStaleFrameLimit.
	StaleFrameLimit int
}

// Coordinator is the public interface for tick-to-render bridging.
//
// Lifecycle: New() → RegisterFrameCallback() → ticks flow →
// UnregisterFrameCallback()/Release().
type Coordinator interface {
	// RegisterFrameCallback subscribes to the clock and starts
	// delivering per-tick results to cb. One callback at a time;
	// returns ErrCallbackRegistered on a duplicate, ErrNilCallback for
	// nil.
	RegisterFrameCallback(cb FrameCallback) error

	// UnregisterFrameCallback detaches the callback. Synchronous: once
	// it returns no further callback fires. Safe when not registered.
	//
	// MUST NOT be called from inside the frame callback.
	UnregisterFrameCallback()

	// SetViewport updates screen dimensions for subsequent solves
	// (rotation, window resize). Non-positive dimensions are ignored.
	SetViewport(vp transform.Viewport)

	// Release detaches from the clock and drops cached state.
	// Idempotent; safe without a prior Register.
	Release()

	// Stats returns an operational snapshot (non-blocking).
	Stats() Stats
}

// New creates a coordinator bound to clock and tracker. The clock is
// shared, not owned: starting and stopping it belongs to the session
// lifecycle.
func New(clock frameclock.Clock, tracker TrackerSource, cfg Config) (Coordinator, error) {
	return internal.NewCoordinator(clock, tracker, cfg.Viewport, cfg.Solver, cfg.StaleFrameLimit)
}
