package coordinator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/e7canasta/aura-rendersync/coordinator"
	"github.com/e7canasta/aura-rendersync/frameclock"
	"github.com/e7canasta/aura-rendersync/transform"
)

// stubTracker hands out at most one fresh sample per Set call,
// mirroring the consume-on-read semantics of a real tracker adapter.
type stubTracker struct {
	mu    sync.Mutex
	pose  transform.Pose
	cam   transform.CameraProjection
	fresh bool
}

func (s *stubTracker) Set(pose transform.Pose, cam transform.CameraProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pose = pose
	s.cam = cam
	s.fresh = true
}

func (s *stubTracker) Sample() (transform.Pose, transform.CameraProjection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.fresh
	s.fresh = false
	return s.pose, s.cam, fresh
}

// frameCollector records delivered results for later assertions.
type frameCollector struct {
	mu      sync.Mutex
	results []transform.Result
	frames  []frameclock.FrameTime
}

func (f *frameCollector) callback(res transform.Result, ft frameclock.FrameTime) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	f.frames = append(f.frames, ft)
}

func (f *frameCollector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

func (f *frameCollector) result(i int) transform.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[i]
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for: %s", msg)
}

func testCamera() transform.CameraProjection {
	return transform.CameraProjection{
		Projection: mgl32.Perspective(mgl32.DegToRad(60), 1080.0/1920.0, 0.1, 100),
		View:       mgl32.Ident4(),
	}
}

func centerPose() transform.Pose {
	return transform.Pose{
		Position:    mgl32.Vec3{0, 0, -2},
		Orientation: mgl32.QuatIdent(),
	}
}

// rig bundles a manual-pulse clock, stub tracker and coordinator.
type rig struct {
	pulse   *frameclock.ManualPulse
	clock   frameclock.Clock
	tracker *stubTracker
	coord   coordinator.Coordinator
	col     *frameCollector
	nextTS  time.Time
}

func newRig(t *testing.T, cfg coordinator.Config) *rig {
	t.Helper()

	pulse := frameclock.NewManualPulse()
	clock := frameclock.New(pulse, 0)
	tracker := &stubTracker{}

	if cfg.Viewport == (transform.Viewport{}) {
		cfg.Viewport = transform.Viewport{Width: 1080, Height: 1920}
	}
	coord, err := coordinator.New(clock, tracker, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := clock.Start(context.Background()); err != nil {
		t.Fatalf("clock start failed: %v", err)
	}
	t.Cleanup(func() {
		coord.Release()
		clock.Stop()
	})

	return &rig{
		pulse:   pulse,
		clock:   clock,
		tracker: tracker,
		coord:   coord,
		col:     &frameCollector{},
		nextTS:  time.Unix(0, 0),
	}
}

// tick emits one pulse and waits for the resulting callback.
func (r *rig) tick(t *testing.T) {
	t.Helper()
	before := r.col.count()
	r.pulse.Emit(r.nextTS)
	r.nextTS = r.nextTS.Add(16 * time.Millisecond)
	waitFor(t, time.Second, func() bool { return r.col.count() > before }, "tick delivery")
}

// TestFreshSampleSolved validates a fresh tracker sample is solved and
// delivered with correct screen placement.
func TestFreshSampleSolved(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	res := r.col.result(0)
	if !res.Visible {
		t.Fatal("centered anchor not visible")
	}
	if res.ScreenX < 539 || res.ScreenX > 541 || res.ScreenY < 959 || res.ScreenY > 961 {
		t.Errorf("screen position = (%.1f, %.1f), want (540, 960)", res.ScreenX, res.ScreenY)
	}

	stats := r.coord.Stats()
	if stats.FramesDelivered == 0 {
		t.Error("FramesDelivered not counted")
	}
	if stats.CacheServed != 0 {
		t.Errorf("CacheServed = %d on a fresh tick, want 0", stats.CacheServed)
	}

	t.Logf("✅ fresh sample solved at (%.1f, %.1f) scale=%.2f", res.ScreenX, res.ScreenY, res.Scale)
}

// TestCachedResultOnMissedSample validates a tick without fresh
// tracking re-delivers the previous result.
func TestCachedResultOnMissedSample(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)
	r.tick(t) // no fresh sample

	first, second := r.col.result(0), r.col.result(1)
	if second != first {
		t.Errorf("cached result differs from original:\n first=%+v\nsecond=%+v", first, second)
	}
	if !second.Visible {
		t.Error("cached result hidden before stale limit")
	}
	if got := r.coord.Stats().CacheServed; got != 1 {
		t.Errorf("CacheServed = %d, want 1", got)
	}

	t.Logf("✅ cache bridged 1 missed tick")
}

// TestStaleLimitHidesOverlay validates the cached result flips to
// hidden after StaleFrameLimit consecutive missed samples.
func TestStaleLimitHidesOverlay(t *testing.T) {
	const limit = 3
	r := newRig(t, coordinator.Config{StaleFrameLimit: limit})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)
	for i := 0; i < limit+1; i++ {
		r.tick(t)
	}

	// Ticks 1..limit-1 are within tolerance, tick at the limit and
	// beyond are hidden.
	for i := 1; i < limit; i++ {
		if !r.col.result(i).Visible {
			t.Errorf("tick %d hidden before stale limit", i)
		}
	}
	for i := limit; i <= limit+1; i++ {
		res := r.col.result(i)
		if res.Visible {
			t.Errorf("tick %d still visible past stale limit", i)
		}
		if res.ScreenX != r.col.result(0).ScreenX {
			t.Errorf("stale result lost cached placement")
		}
	}

	if got := r.coord.Stats().StaleBlanks; got == 0 {
		t.Error("StaleBlanks not counted")
	}

	t.Logf("✅ overlay hidden after %d missed ticks", limit)
}

// TestNeverTrackedDeliversHidden validates ticks before any fresh
// sample deliver a hidden zero result rather than garbage.
func TestNeverTrackedDeliversHidden(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tick(t)

	res := r.col.result(0)
	if res.Visible {
		t.Error("visible result with no tracking data")
	}
	if res.ScreenX != 0 || res.ScreenY != 0 || res.Scale != 0 {
		t.Errorf("non-zero placement with no tracking data: %+v", res)
	}
}

// TestSolverFaultFallsBackToCache validates degenerate tracker data is
// bridged with the cache instead of propagating.
func TestSolverFaultFallsBackToCache(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	// Zero projection matrix is rejected by the solver.
	r.tracker.Set(centerPose(), transform.CameraProjection{View: mgl32.Ident4()})
	r.tick(t)

	if r.col.result(1) != r.col.result(0) {
		t.Error("fault tick not served from cache")
	}
	if got := r.coord.Stats().SolverFaults; got != 1 {
		t.Errorf("SolverFaults = %d, want 1", got)
	}

	t.Logf("✅ solver fault isolated, cache served")
}

// TestUnregisterStopsDelivery validates no callback fires after
// UnregisterFrameCallback returns.
func TestUnregisterStopsDelivery(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	r.coord.UnregisterFrameCallback()
	countAtUnregister := r.col.count()

	// Pulses after unregister must not reach the callback. Emit from a
	// goroutine: with no subscribers the loop still consumes pulses.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			r.pulse.Emit(r.nextTS)
			r.nextTS = r.nextTS.Add(16 * time.Millisecond)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pulses not consumed after unregister")
	}
	time.Sleep(20 * time.Millisecond)

	if got := r.col.count(); got != countAtUnregister {
		t.Errorf("callback fired %d times after unregister", got-countAtUnregister)
	}

	t.Logf("✅ unregister is synchronous: %d deliveries before, 0 after", countAtUnregister)
}

// TestReRegisterResumesDelivery validates the register → unregister →
// register cycle works and the cache survives the gap.
func TestReRegisterResumesDelivery(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	r.coord.UnregisterFrameCallback()
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("re-register failed: %v", err)
	}

	r.tick(t) // no fresh sample: served from the surviving cache
	if r.col.result(1) != r.col.result(0) {
		t.Error("cache did not survive unregister/register cycle")
	}
}

// TestRegisterValidation validates duplicate and nil registrations are
// rejected.
func TestRegisterValidation(t *testing.T) {
	r := newRig(t, coordinator.Config{})

	if err := r.coord.RegisterFrameCallback(nil); err != coordinator.ErrNilCallback {
		t.Errorf("nil callback: got %v, want ErrNilCallback", err)
	}
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != coordinator.ErrCallbackRegistered {
		t.Errorf("duplicate callback: got %v, want ErrCallbackRegistered", err)
	}
}

// TestReleaseIdempotent validates Release is safe repeatedly and
// without a prior register.
func TestReleaseIdempotent(t *testing.T) {
	r := newRig(t, coordinator.Config{})

	r.coord.Release() // never registered

	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	r.coord.Release()
	r.coord.Release()

	// Cache is gone: re-register and tick without fresh data must be
	// hidden.
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("re-register after release failed: %v", err)
	}
	r.tick(t)
	if r.col.result(r.col.count() - 1).Visible {
		t.Error("cached state survived Release")
	}

	t.Logf("✅ release idempotent, cache dropped")
}

// TestSetViewportAppliesToNextSolve validates viewport changes take
// effect on the following tick and invalid dimensions are ignored.
func TestSetViewportAppliesToNextSolve(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	r.coord.SetViewport(transform.Viewport{Width: 2160, Height: 3840})
	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	if got := r.col.result(1).ScreenX; got < 1079 || got > 1081 {
		t.Errorf("after viewport change ScreenX = %.1f, want 1080", got)
	}

	r.coord.SetViewport(transform.Viewport{Width: 0, Height: -5})
	r.tracker.Set(centerPose(), testCamera())
	r.tick(t)

	if got := r.col.result(2).ScreenX; got < 1079 || got > 1081 {
		t.Errorf("invalid viewport was applied: ScreenX = %.1f", got)
	}

	t.Logf("✅ viewport resize applied, invalid viewport rejected")
}

// TestFrameIndexMonotonic validates delivered frame indices strictly
// increase across ticks.
func TestFrameIndexMonotonic(t *testing.T) {
	r := newRig(t, coordinator.Config{})
	if err := r.coord.RegisterFrameCallback(r.col.callback); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		r.tick(t)
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()
	for i := 1; i < len(r.col.frames); i++ {
		if r.col.frames[i].FrameIndex <= r.col.frames[i-1].FrameIndex {
			t.Errorf("frame index not increasing: %d after %d",
				r.col.frames[i].FrameIndex, r.col.frames[i-1].FrameIndex)
		}
	}
}
