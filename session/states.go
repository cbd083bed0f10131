package session

// State identifies a lifecycle phase.
type State int

const (
	// StateIdle is the initial phase: no resources, no clock.
	StateIdle State = iota

	// StateInitializing covers the bounded tracker-probe retry loop.
	StateInitializing

	// StateReady means tracking is available and hardware handles are
	// held, but frames are not yet flowing.
	StateReady

	// StateTracking means the clock is running and frame callbacks
	// fire every tick.
	StateTracking

	// StatePaused means the clock is halted with the coordinator still
	// registered; Resume restarts frame flow without re-initializing.
	StatePaused

	// StateFailed is reached when initialization exhausts its retry
	// budget. Terminal except for Dispose.
	StateFailed

	// StateDisposed is the terminal phase: all resources released.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateTracking:
		return "tracking"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// validTransitions is the edge set of the lifecycle graph. Anything
// not listed is rejected with ErrInvalidTransition.
var validTransitions = map[State][]State{
	StateIdle:         {StateInitializing, StateDisposed},
	StateInitializing: {StateReady, StateFailed, StateIdle},
	StateReady:        {StateTracking, StateDisposed},
	StateTracking:     {StatePaused, StateFailed, StateDisposed},
	StatePaused:       {StateTracking, StateDisposed},
	StateFailed:       {StateDisposed},
	StateDisposed:     {},
}

func canTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
