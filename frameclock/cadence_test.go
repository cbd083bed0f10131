package frameclock_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/e7canasta/aura-rendersync/frameclock"
)

// generateTickTimes produces n timestamps at targetHz with the given
// relative jitter (fraction of the nominal interval).
func generateTickTimes(n int, targetHz, jitter float64, seed int64) []time.Time {
	rng := rand.New(rand.NewSource(seed))
	interval := time.Duration(float64(time.Second) / targetHz)

	times := make([]time.Time, n)
	current := time.Unix(0, 0)
	for i := 0; i < n; i++ {
		times[i] = current
		offset := (rng.Float64()*2 - 1) * jitter * float64(interval)
		current = current.Add(interval + time.Duration(offset))
	}
	return times
}

// TestCadenceSteadyStream validates a low-jitter 60 Hz stream is
// judged steady.
func TestCadenceSteadyStream(t *testing.T) {
	times := generateTickTimes(120, 60, 0.05, 1)
	stats := frameclock.CalculateCadenceStats(times, 2*time.Second)

	if !stats.IsSteady {
		t.Errorf("steady stream judged unsteady (rate stddev %.2f%% of mean, jitter %.4fs)",
			stats.RateStdDev/stats.RateMeanHz*100, stats.JitterMean)
	}
	if stats.RateMeanHz < 55 || stats.RateMeanHz > 65 {
		t.Errorf("RateMeanHz = %.2f, want ~60", stats.RateMeanHz)
	}

	t.Logf("✅ steady: rate=%.1fHz stddev=%.2f jitter=%.4fs",
		stats.RateMeanHz, stats.RateStdDev, stats.JitterMean)
}

// TestCadenceUnsteadyStream validates a high-jitter stream is judged
// unsteady.
func TestCadenceUnsteadyStream(t *testing.T) {
	times := generateTickTimes(120, 60, 0.6, 2)
	stats := frameclock.CalculateCadenceStats(times, 2*time.Second)

	if stats.IsSteady {
		t.Errorf("high-jitter stream judged steady (jitter %.4fs, expected interval %.4fs)",
			stats.JitterMean, 1.0/stats.RateMeanHz)
	}
}

// TestCadenceEdgeCases validates degenerate windows do not panic and
// return sensible defaults.
func TestCadenceEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		tickTimes []time.Time
		duration  time.Duration
	}{
		{name: "zero ticks", tickTimes: nil, duration: time.Second},
		{name: "one tick", tickTimes: []time.Time{time.Unix(0, 0)}, duration: time.Second},
		{name: "zero duration", tickTimes: generateTickTimes(10, 60, 0, 3), duration: 0},
		{name: "identical timestamps", tickTimes: []time.Time{
			time.Unix(0, 0), time.Unix(0, 0), time.Unix(0, 0),
		}, duration: time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stats := frameclock.CalculateCadenceStats(tc.tickTimes, tc.duration)
			if stats == nil {
				t.Fatal("CalculateCadenceStats returned nil")
			}
			if stats.IsSteady {
				t.Error("degenerate window judged steady")
			}
		})
	}
}

// TestCadenceMonotonicJitterRelation validates that once rising jitter
// makes the verdict unsteady it stays unsteady.
func TestCadenceMonotonicJitterRelation(t *testing.T) {
	previousSteady := true
	for _, jitter := range []float64{0.05, 0.15, 0.30, 0.50, 0.80} {
		times := generateTickTimes(120, 60, jitter, 4)
		stats := frameclock.CalculateCadenceStats(times, 2*time.Second)

		t.Logf("jitter %.0f%% → steady=%v (rate stddev %.1f%%)",
			jitter*100, stats.IsSteady, stats.RateStdDev/stats.RateMeanHz*100)

		if !previousSteady && stats.IsSteady {
			t.Errorf("steadiness flipped back to true at jitter %.0f%%", jitter*100)
		}
		previousSteady = stats.IsSteady
	}
}
