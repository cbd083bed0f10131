package resourceguard

import (
	"io"
	"log/slog"
	"sync"
)

// ResourceSet holds the hardware handles owned by a Guard.
//
// Each field is optional (nil handles are skipped during release).
// Handles are modeled as io.Closer: the guard never interprets them,
// it only guarantees they are closed exactly once.
type ResourceSet struct {
	// CaptureSession is the platform capture-session handle.
	// Closed first: an open session may still reference the device.
	CaptureSession io.Closer

	// Device is the camera/tracking device handle.
	// Closed second, after the session no longer uses it.
	Device io.Closer

	// Surface is the output surface the overlay renders into.
	// Closed last.
	Surface io.Closer
}

// Guard owns a ResourceSet and releases it exactly once, in order.
//
// Thread-safety: all methods safe for concurrent use.
type Guard struct {
	mu  sync.Mutex
	set ResourceSet

	// releases counts Release calls that actually closed something.
	// Used by tests to assert exactly-once semantics.
	releases uint64
}

// New creates an empty guard holding no handles.
func New() *Guard {
	return &Guard{}
}

// Assign transfers ownership of a ResourceSet to the guard.
//
// If the guard still holds open handles from a previous assignment,
// those are released first. This is logged as a warning (it indicates
// a lifecycle ordering bug in the caller) but is not an error: the
// prior handles must not leak either way.
func (g *Guard) Assign(set ResourceSet) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.holdsLocked() {
		slog.Warn("resourceguard: assign while handles still open, releasing prior set")
		g.releaseLocked()
	}

	g.set = set
}

// Release closes all held handles in order: capture session, device,
// surface. Each close is attempted independently; a failure closing
// one handle does not prevent the others. After Release all fields
// are cleared regardless of individual failures.
//
// Idempotent: calling Release with no open handles is a no-op.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.holdsLocked() {
		return
	}

	g.releaseLocked()
}

// Held reports whether the guard currently owns any open handle.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holdsLocked()
}

// ReleaseCount returns the number of Release operations that closed
// at least one handle.
func (g *Guard) ReleaseCount() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.releases
}

func (g *Guard) holdsLocked() bool {
	return g.set.CaptureSession != nil || g.set.Device != nil || g.set.Surface != nil
}

// releaseLocked performs the ordered close. Caller holds g.mu.
//
// Close failures are logged at Warn and swallowed: a teardown failure
// cannot be acted upon by the caller.
func (g *Guard) releaseLocked() {
	closeHandle(g.set.CaptureSession, "capture_session")
	closeHandle(g.set.Device, "device")
	closeHandle(g.set.Surface, "surface")

	g.set = ResourceSet{}
	g.releases++

	slog.Debug("resourceguard: all handles released")
}

func closeHandle(c io.Closer, name string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("resourceguard: handle close failed",
			"handle", name,
			"error", err,
		)
	}
}
