// Package session drives the render engine through its lifecycle:
//
//	Idle → Initializing → Ready → Tracking ⇄ Paused → Disposed
//	               ↘ Failed → Disposed
//
// The lifecycle owns the resource guard and orchestrates the shared
// clock and coordinator; collaborators are injected, never created
// here. Initialization is a bounded retry loop: the tracker is probed
// up to InitAttempts times at InitRetryDelay intervals, with probe
// errors treated as soft failures (logged and retried). A context
// cancellation during initialization reverts to Idle; exhausting all
// attempts lands in Failed, from which only Dispose is legal. Failed
// is also reachable from Tracking via ReportFault when the platform
// reports a fatal runtime tracking fault.
//
// Pause and Resume work by stopping and restarting the clock while the
// coordinator stays registered: the solve cache survives, resume is
// cheap, and the clock's synchronous Stop guarantees no frame callback
// fires after Pause returns.
//
// Dispose releases in dependency order — clock halted, coordinator
// detached, hardware handles closed — and is idempotent from every
// state.
//
// Methods are serialized internally; they may be called from any
// goroutine but not from inside a frame callback.
package session
