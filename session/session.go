package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/aura-rendersync/coordinator"
	"github.com/e7canasta/aura-rendersync/frameclock"
	"github.com/e7canasta/aura-rendersync/resourceguard"
)

// Public API errors for lifecycle operations.
var (
	// ErrInitTimeout means the tracker never reported ready within the
	// retry budget. The session is in StateFailed.
	ErrInitTimeout = errors.New("tracking initialization exhausted retry budget")

	// ErrInvalidTransition means the requested operation is not legal
	// from the current state.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	ErrNilClock       = errors.New("clock cannot be nil")
	ErrNilCoordinator = errors.New("coordinator cannot be nil")
	ErrNilTracker     = errors.New("tracker probe cannot be nil")
	ErrNilProvider    = errors.New("resource provider cannot be nil")
)

// Initialization retry defaults: ten probes a second apart gives the
// platform tracking service ~10s to come up.
const (
	DefaultInitAttempts   = 10
	DefaultInitRetryDelay = time.Second
)

// TrackerProbe reports whether the platform tracking service is ready
// to deliver poses. Probed repeatedly during initialization; an error
// is a soft failure (logged, retried), not a terminal one.
type TrackerProbe interface {
	Ready() (bool, error)
}

// ResourceProvider acquires the hardware handles a session needs once
// tracking is available. Ownership of the returned set transfers to
// the session's resource guard.
type ResourceProvider interface {
	Acquire(ctx context.Context) (resourceguard.ResourceSet, error)
}

// StateObserver is notified after each state change. Called outside
// internal locks, on the goroutine driving the transition; keep it
// fast and do not call back into the lifecycle.
type StateObserver func(from, to State)

// Config carries lifecycle tuning.
type Config struct {
	// InitAttempts bounds the tracker probe loop. Zero selects
	// DefaultInitAttempts.
	InitAttempts int

	// InitRetryDelay is the pause between probes. Zero selects
	// DefaultInitRetryDelay.
	InitRetryDelay time.Duration

	// OnStateChange, if set, observes every transition.
	OnStateChange StateObserver
}

// Lifecycle owns one session's state machine, its resource guard, and
// the start/stop authority over the shared clock.
type Lifecycle struct {
	id       string
	clock    frameclock.Clock
	coord    coordinator.Coordinator
	probe    TrackerProbe
	provider ResourceProvider
	guard    *resourceguard.Guard
	cfg      Config

	// opMu serializes lifecycle operations; stateMu guards the state
	// field for cheap reads.
	opMu    sync.Mutex
	stateMu sync.Mutex
	state   State
}

// New creates an Idle lifecycle around the given collaborators. The
// clock and coordinator are shared with the caller but started and
// stopped only through this lifecycle.
func New(clock frameclock.Clock, coord coordinator.Coordinator, probe TrackerProbe, provider ResourceProvider, cfg Config) (*Lifecycle, error) {
	if clock == nil {
		return nil, ErrNilClock
	}
	if coord == nil {
		return nil, ErrNilCoordinator
	}
	if probe == nil {
		return nil, ErrNilTracker
	}
	if provider == nil {
		return nil, ErrNilProvider
	}

	if cfg.InitAttempts <= 0 {
		cfg.InitAttempts = DefaultInitAttempts
	}
	if cfg.InitRetryDelay <= 0 {
		cfg.InitRetryDelay = DefaultInitRetryDelay
	}

	return &Lifecycle{
		id:       uuid.NewString(),
		clock:    clock,
		coord:    coord,
		probe:    probe,
		provider: provider,
		guard:    resourceguard.New(),
		cfg:      cfg,
		state:    StateIdle,
	}, nil
}

// ID returns the session's instance identifier, present in every log
// line for correlation.
func (l *Lifecycle) ID() string {
	return l.id
}

// State returns the current lifecycle phase.
func (l *Lifecycle) State() State {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	return l.state
}

// Start runs initialization: probe the tracker until ready, then
// acquire hardware handles. Blocks for up to
// InitAttempts × InitRetryDelay.
//
// Outcomes:
//   - tracker ready and resources acquired → StateReady, nil
//   - retry budget exhausted → StateFailed, error wrapping
//     ErrInitTimeout
//   - ctx cancelled mid-loop → StateIdle (revert), ctx.Err()
func (l *Lifecycle) Start(ctx context.Context) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.transition(StateIdle, StateInitializing); err != nil {
		return err
	}

	slog.Info("session: initializing",
		"session_id", l.id,
		"max_attempts", l.cfg.InitAttempts,
		"retry_delay", l.cfg.InitRetryDelay,
	)

	for attempt := 1; attempt <= l.cfg.InitAttempts; attempt++ {
		if err := l.tryInit(ctx, attempt); err == nil {
			return l.transition(StateInitializing, StateReady)
		}

		if attempt < l.cfg.InitAttempts {
			select {
			case <-ctx.Done():
				// Revert rather than fail: the caller chose to stop
				// waiting, the tracker may well come up later.
				if terr := l.transition(StateInitializing, StateIdle); terr != nil {
					return terr
				}
				return ctx.Err()
			case <-time.After(l.cfg.InitRetryDelay):
			}
		}
	}

	if err := l.transition(StateInitializing, StateFailed); err != nil {
		return err
	}
	return fmt.Errorf("session %s: tracker not ready after %d attempts: %w",
		l.id, l.cfg.InitAttempts, ErrInitTimeout)
}

// tryInit performs one probe-and-acquire attempt. Any failure is
// logged and returned for the retry loop to absorb.
func (l *Lifecycle) tryInit(ctx context.Context, attempt int) error {
	ready, err := l.probe.Ready()
	if err != nil {
		slog.Warn("session: tracker probe failed",
			"session_id", l.id, "attempt", attempt, "error", err)
		return err
	}
	if !ready {
		slog.Debug("session: tracker not ready",
			"session_id", l.id, "attempt", attempt)
		return errors.New("tracker not ready")
	}

	set, err := l.provider.Acquire(ctx)
	if err != nil {
		slog.Warn("session: resource acquisition failed",
			"session_id", l.id, "attempt", attempt, "error", err)
		return err
	}

	l.guard.Assign(set)
	return nil
}

// Track starts frame delivery: registers cb with the coordinator and
// starts the clock. Legal only from StateReady.
func (l *Lifecycle) Track(cb coordinator.FrameCallback) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.require(StateReady, StateTracking); err != nil {
		return err
	}

	if err := l.coord.RegisterFrameCallback(cb); err != nil {
		return err
	}
	if err := l.clock.Start(context.Background()); err != nil {
		l.coord.UnregisterFrameCallback()
		return err
	}

	return l.transition(StateReady, StateTracking)
}

// Pause halts frame delivery without releasing anything. When Pause
// returns, no further frame callback fires. Legal only from
// StateTracking.
func (l *Lifecycle) Pause() error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.require(StateTracking, StatePaused); err != nil {
		return err
	}

	// Stop blocks until the delivery loop exits, which is what makes
	// the no-callback-after-pause guarantee hold.
	if err := l.clock.Stop(); err != nil {
		return err
	}

	return l.transition(StateTracking, StatePaused)
}

// Resume restarts frame delivery after a Pause. The coordinator stayed
// registered and its cache intact, so the first resumed tick renders
// immediately. Legal only from StatePaused.
func (l *Lifecycle) Resume() error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.require(StatePaused, StateTracking); err != nil {
		return err
	}

	if err := l.clock.Start(context.Background()); err != nil {
		return err
	}

	return l.transition(StatePaused, StateTracking)
}

// ReportFault records a fatal runtime tracking fault reported by the
// platform layer (device lost, tracking service crashed). Frame
// delivery halts and the session moves to StateFailed; only Dispose is
// legal afterwards. Legal only from StateTracking.
func (l *Lifecycle) ReportFault(cause error) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.require(StateTracking, StateFailed); err != nil {
		return err
	}

	if err := l.clock.Stop(); err != nil {
		slog.Warn("session: clock stop failed during fault handling",
			"session_id", l.id, "error", err)
	}
	slog.Error("session: tracking fault", "session_id", l.id, "error", cause)

	return l.transition(StateTracking, StateFailed)
}

// Dispose tears the session down in dependency order: clock halted,
// coordinator detached, hardware handles closed. Idempotent; legal
// from every state (a Dispose on StateDisposed is a no-op).
func (l *Lifecycle) Dispose() error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	from := l.State()
	if from == StateDisposed {
		return nil
	}

	if from == StateTracking {
		if err := l.clock.Stop(); err != nil {
			slog.Warn("session: clock stop failed during dispose",
				"session_id", l.id, "error", err)
		}
	}

	l.coord.Release()
	l.guard.Release()

	return l.transition(from, StateDisposed)
}

// require validates that the (from, to) edge is currently legal
// without taking it.
func (l *Lifecycle) require(from, to State) error {
	current := l.State()
	if current != from || !canTransition(from, to) {
		return fmt.Errorf("%w: %s → %s (session %s in state %s)",
			ErrInvalidTransition, from, to, l.id, current)
	}
	return nil
}

// transition takes the (from, to) edge, logs it, and notifies the
// observer outside all locks.
func (l *Lifecycle) transition(from, to State) error {
	l.stateMu.Lock()
	if l.state != from || !canTransition(from, to) {
		current := l.state
		l.stateMu.Unlock()
		return fmt.Errorf("%w: %s → %s (session %s in state %s)",
			ErrInvalidTransition, from, to, l.id, current)
	}
	l.state = to
	l.stateMu.Unlock()

	slog.Info("session: state changed",
		"session_id", l.id, "from", from.String(), "to", to.String())

	if l.cfg.OnStateChange != nil {
		l.cfg.OnStateChange(from, to)
	}
	return nil
}
