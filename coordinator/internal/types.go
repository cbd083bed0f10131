package internal

import (
	"github.com/e7canasta/aura-rendersync/frameclock"
	"github.com/e7canasta/aura-rendersync/transform"
)

// TrackerSource is the coordinator's view of the external tracker.
type TrackerSource interface {
	// Sample returns the most recent (pose, camera) pair. fresh is
	// false when no new tracking update has arrived since the previous
	// call; the returned pose/camera are then undefined and must not
	// be solved.
	//
	// Called once per tick on the clock's delivery goroutine; must be
	// non-blocking.
	Sample() (pose transform.Pose, cam transform.CameraProjection, fresh bool)
}

// FrameCallback receives the per-tick transform result. Runs on the
// clock's delivery goroutine and must never block.
type FrameCallback func(transform.Result, frameclock.FrameTime)

// Stats is a snapshot of coordinator operational state.
type Stats struct {
	// FramesDelivered counts callback invocations.
	FramesDelivered uint64

	// SolverFaults counts ticks where the solver rejected fresh
	// tracker data (fell back to cache). Should be ~0; non-zero means
	// the tracker is producing degenerate matrices.
	SolverFaults uint64

	// CacheServed counts ticks bridged with the cached result because
	// no fresh sample was available.
	CacheServed uint64

	// StaleBlanks counts ticks where the cache itself had gone stale
	// and was delivered with Visible forced to false.
	StaleBlanks uint64
}
