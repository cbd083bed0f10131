// Package internal implements the frame clock delivery loop.
//
// This package is INTERNAL - clients MUST use the public API in the
// parent package.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sentinel errors re-exported by the parent package.
var (
	ErrSubscriberExists = errors.New("frameclock: subscriber id already registered")
	ErrNilCallback      = errors.New("frameclock: callback must not be nil")
)

// lateTickFactor classifies a tick as late when the inter-pulse gap
// exceeds this multiple of the nominal interval.
const lateTickFactor = 1.5

// TickFunc receives one FrameTime per clock tick.
type TickFunc func(FrameTime)

// subscriber tracks per-subscriber delivery state.
//
// lastNanos is the timestamp of the previous tick delivered to this
// subscriber, or -1 before the first delivery (yields DeltaNanos 0).
type subscriber struct {
	fn        TickFunc
	lastNanos int64
}

// Clock is the concrete frame clock.
//
// Goroutine topology:
//   - 1 fixed: deliveryLoop (spawned by Start, stopped by Stop)
//   - subscriber callbacks run on the deliveryLoop goroutine
//
// Thread-safety: all public methods safe for concurrent use. The one
// contract is that Subscribe/Unsubscribe/Stop MUST NOT be called from
// inside a tick callback (the dispatch lock is held during delivery;
// doing so would self-deadlock).
type Clock struct {
	pulses  <-chan time.Time
	nominal time.Duration

	// mu protects subs and is held across callback dispatch. That is
	// what makes Unsubscribe synchronous with respect to the delivery
	// goroutine: once it returns, no further tick can reach the
	// removed callback.
	mu   sync.Mutex
	subs map[string]*subscriber

	frameIndex uint64 // deliveryLoop only
	lastPulse  int64  // deliveryLoop only; UnixNano of previous pulse, 0 = none

	ticks uint64 // atomic
	late  uint64 // atomic

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startedMu sync.Mutex
	started   bool
	startedAt time.Time
}

// NewClock creates a clock fed by the given pulse channel.
// nominal is the expected inter-pulse interval (late-tick threshold
// reference only; the clock never generates its own pulses).
func NewClock(pulses <-chan time.Time, nominal time.Duration) *Clock {
	return &Clock{
		pulses:  pulses,
		nominal: nominal,
		subs:    make(map[string]*subscriber),
	}
}

// Start begins the delivery loop. Returns an error if already started.
// The clock is restartable: a Stop/Start cycle resumes delivery with
// the frame index continuing from where it left off.
func (c *Clock) Start(ctx context.Context) error {
	c.startedMu.Lock()
	defer c.startedMu.Unlock()

	if c.started {
		return fmt.Errorf("frameclock: already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.startedAt = time.Now()
	c.lastPulse = 0 // a restart has no prior pulse reference

	c.wg.Add(1)
	go c.deliveryLoop()

	slog.Debug("frameclock: started", "nominal_interval", c.nominal)
	return nil
}

// Stop halts the delivery loop and blocks until it exits. After Stop
// returns, no further tick is dispatched — cancellation is synchronous
// with respect to the delivery goroutine. Idempotent.
func (c *Clock) Stop() error {
	c.startedMu.Lock()
	if !c.started {
		c.startedMu.Unlock()
		return nil
	}
	c.started = false
	c.startedMu.Unlock()

	c.cancel()
	c.wg.Wait()

	slog.Debug("frameclock: stopped", "ticks_delivered", atomic.LoadUint64(&c.ticks))
	return nil
}

// Subscribe registers a tick callback under the given id.
func (c *Clock) Subscribe(id string, fn TickFunc) error {
	if fn == nil {
		return ErrNilCallback
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.subs[id]; exists {
		return fmt.Errorf("%w: %q", ErrSubscriberExists, id)
	}

	c.subs[id] = &subscriber{fn: fn, lastNanos: -1}
	return nil
}

// Unsubscribe removes a callback. Blocks until any in-flight dispatch
// completes, so no tick is delivered after it returns. Safe to call
// when not subscribed.
func (c *Clock) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// Stats returns an operational snapshot (non-blocking, may be
// slightly stale relative to the delivery loop).
func (c *Clock) Stats() ClockStats {
	c.mu.Lock()
	subCount := len(c.subs)
	c.mu.Unlock()

	c.startedMu.Lock()
	running := c.started
	startedAt := c.startedAt
	c.startedMu.Unlock()

	ticks := atomic.LoadUint64(&c.ticks)

	var hz float64
	if running && ticks > 0 {
		if elapsed := time.Since(startedAt).Seconds(); elapsed > 0 {
			hz = float64(ticks) / elapsed
		}
	}

	return ClockStats{
		TicksDelivered: ticks,
		LateTicks:      atomic.LoadUint64(&c.late),
		Subscribers:    subCount,
		Running:        running,
		MeasuredHz:     hz,
		StartedAt:      startedAt,
	}
}

// deliveryLoop consumes pulses and fans them out to subscribers.
//
// Exits on: ctx cancellation (Stop) or pulse channel close.
func (c *Clock) deliveryLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return

		case ts, ok := <-c.pulses:
			if !ok {
				slog.Debug("frameclock: pulse source closed, delivery loop exiting")
				return
			}
			c.dispatch(ts)
		}
	}
}

// dispatch delivers one tick to all subscribers.
//
// Runs on the deliveryLoop goroutine only, holding c.mu for the whole
// round: frame indices reach each subscriber strictly increasing and
// never concurrently.
func (c *Clock) dispatch(ts time.Time) {
	nanos := ts.UnixNano()

	c.frameIndex++
	if c.lastPulse != 0 && nanos-c.lastPulse > int64(float64(c.nominal)*lateTickFactor) {
		atomic.AddUint64(&c.late, 1)
	}
	c.lastPulse = nanos

	c.mu.Lock()
	for id, sub := range c.subs {
		ft := FrameTime{
			FrameIndex:     c.frameIndex,
			TimestampNanos: nanos,
		}
		if sub.lastNanos >= 0 {
			ft.DeltaNanos = nanos - sub.lastNanos
		}
		sub.lastNanos = nanos

		c.invoke(id, sub.fn, ft)
	}
	c.mu.Unlock()

	atomic.AddUint64(&c.ticks, 1)
}

// invoke runs one callback with panic isolation: a fault in a
// subscriber loses that subscriber one frame, never the clock.
func (c *Clock) invoke(id string, fn TickFunc, ft FrameTime) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("frameclock: subscriber panicked, frame skipped",
				"subscriber", id,
				"frame_index", ft.FrameIndex,
				"panic", r,
			)
		}
	}()

	fn(ft)
}
