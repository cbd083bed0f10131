package frameclock

import (
	"context"
	"time"

	"github.com/e7canasta/aura-rendersync/frameclock/internal"
)

// FrameTime is re-exported from the internal package.
// See internal/types.go for full documentation.
type FrameTime = internal.FrameTime

// ClockStats is re-exported from the internal package.
// See internal/types.go for full documentation.
type ClockStats = internal.ClockStats

// CadenceStats is re-exported from the internal package.
// See internal/cadence.go for full documentation.
type CadenceStats = internal.CadenceStats

// TickFunc receives one FrameTime per clock tick. It runs on the
// clock's delivery goroutine and must never block: a tick that cannot
// produce a result falls back to cached data downstream, it does not
// wait.
type TickFunc = internal.TickFunc

// Public API errors - re-exported as a stable contract.
var (
	ErrSubscriberExists = internal.ErrSubscriberExists
	ErrNilCallback      = internal.ErrNilCallback
)

// Clock is the public interface for frame tick delivery.
//
// Lifecycle: New() → Start() → Subscribe()/Unsubscribe() → Stop().
// The clock is restartable: Stop() followed by Start() resumes
// delivery with the frame index continuing monotonically.
type Clock interface {
	// Start begins the delivery loop (non-blocking; spawns one
	// goroutine). Returns an error if already started.
	Start(ctx context.Context) error

	// Stop halts delivery and blocks until the loop exits. After Stop
	// returns no further tick is dispatched. Idempotent.
	//
	// MUST NOT be called from inside a tick callback.
	Stop() error

	// Subscribe registers a callback under id. Ticks reach each
	// subscriber in strictly increasing FrameIndex order, never
	// concurrently; the first tick after subscription carries
	// DeltaNanos == 0.
	//
	// Returns ErrSubscriberExists for a duplicate id, ErrNilCallback
	// for a nil fn.
	Subscribe(id string, fn TickFunc) error

	// Unsubscribe removes a callback. Cancellation is synchronous:
	// once Unsubscribe returns, no further tick is delivered. Safe to
	// call when not subscribed.
	//
	// MUST NOT be called from inside a tick callback.
	Unsubscribe(id string)

	// Stats returns an operational snapshot (non-blocking).
	Stats() ClockStats
}

// DefaultNominalInterval is the 60 Hz reference interval used for
// late-tick classification when none is configured.
const DefaultNominalInterval = 16_666_667 * time.Nanosecond

// New creates a clock fed by the given pulse source.
//
// nominal is the expected inter-pulse interval, used only to classify
// late ticks in Stats(); pass 0 for the 60 Hz default. The clock never
// generates pulses itself — it rides whatever cadence the source
// delivers.
func New(src PulseSource, nominal time.Duration) Clock {
	if nominal <= 0 {
		nominal = DefaultNominalInterval
	}
	return internal.NewClock(src.Pulses(), nominal)
}

// CalculateCadenceStats derives rate and jitter statistics from a
// window of tick timestamps. Used by tests and the simulator to judge
// whether a pulse source is holding its cadence.
func CalculateCadenceStats(tickTimes []time.Time, totalDuration time.Duration) *CadenceStats {
	return internal.CalculateCadenceStats(tickTimes, totalDuration)
}
