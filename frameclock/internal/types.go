package internal

import "time"

// FrameTime describes one clock tick. Never mutated after creation.
type FrameTime struct {
	// FrameIndex is a monotonically increasing tick counter, global to
	// the clock instance (not reset on subscribe).
	FrameIndex uint64

	// TimestampNanos is the pulse timestamp (UnixNano).
	TimestampNanos int64

	// DeltaNanos is the elapsed time since the previous tick delivered
	// to this subscriber. Zero on the first tick after subscription
	// (no prior reference).
	DeltaNanos int64
}

// ClockStats is a snapshot of clock operational state.
type ClockStats struct {
	// TicksDelivered counts dispatch rounds completed since Start.
	TicksDelivered uint64

	// LateTicks counts ticks whose inter-pulse gap exceeded 1.5× the
	// nominal interval. A rising value means the host is dropping
	// refresh pulses or a subscriber callback is too slow.
	LateTicks uint64

	// Subscribers is the current subscriber count.
	Subscribers int

	// Running reports whether the delivery loop is active.
	Running bool

	// MeasuredHz is the observed tick rate since Start (0 when not
	// running or no ticks yet).
	MeasuredHz float64

	// StartedAt is the time of the last successful Start.
	StartedAt time.Time
}
