package main

import (
	"context"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/e7canasta/aura-rendersync/resourceguard"
	"github.com/e7canasta/aura-rendersync/transform"
)

// mockTracker simulates a platform tracker: the anchor orbits slowly
// in front of a fixed camera, and a configurable fraction of samples
// is dropped to exercise the coordinator's cache path.
type mockTracker struct {
	mu       sync.Mutex
	start    time.Time
	dropRate float64
	rng      *rand.Rand
	cam      transform.CameraProjection

	warmup  time.Duration
	readyAt time.Time
	probes  int
}

func newMockTracker(aspect float32, dropRate float64, warmup time.Duration) *mockTracker {
	return &mockTracker{
		start:    time.Now(),
		dropRate: dropRate,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cam: transform.CameraProjection{
			Projection: mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 100),
			View:       mgl32.Ident4(),
		},
		warmup:  warmup,
		readyAt: time.Now().Add(warmup),
	}
}

// Ready implements session.TrackerProbe: the simulated tracking
// service comes up after the configured warmup.
func (m *mockTracker) Ready() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes++
	return time.Now().After(m.readyAt), nil
}

// Sample implements coordinator.TrackerSource. The anchor circles at
// 0.1 Hz, 1.5m radius, 2.5m in front of the camera.
func (m *mockTracker) Sample() (transform.Pose, transform.CameraProjection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rng.Float64() < m.dropRate {
		return transform.Pose{}, transform.CameraProjection{}, false
	}

	t := time.Since(m.start).Seconds()
	angle := 2 * math.Pi * 0.1 * t
	pose := transform.Pose{
		Position: mgl32.Vec3{
			1.5 * float32(math.Sin(angle)),
			0.3 * float32(math.Sin(angle*2.7)),
			-2.5 + 0.8*float32(math.Cos(angle)),
		},
		Orientation: mgl32.QuatIdent(),
	}
	return pose, m.cam, true
}

// simProvider implements session.ResourceProvider with no-op handles.
type simProvider struct{}

type nopHandle struct{}

func (nopHandle) Close() error { return nil }

func (simProvider) Acquire(_ context.Context) (resourceguard.ResourceSet, error) {
	var capture, device, surface io.Closer = nopHandle{}, nopHandle{}, nopHandle{}
	return resourceguard.ResourceSet{
		CaptureSession: capture,
		Device:         device,
		Surface:        surface,
	}, nil
}
