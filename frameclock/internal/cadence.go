package internal

import (
	"math"
	"time"
)

const (
	// rateStabilityThreshold is the maximum allowed tick-rate standard
	// deviation as a fraction of the mean rate for a steady verdict.
	rateStabilityThreshold = 0.15

	// jitterStabilityThreshold is the maximum allowed mean jitter as a
	// fraction of the expected inter-tick interval.
	jitterStabilityThreshold = 0.20
)

// CadenceStats summarizes tick timing over an observation window.
type CadenceStats struct {
	// TicksObserved is the number of tick timestamps analyzed.
	TicksObserved int

	// Duration is the observation window length.
	Duration time.Duration

	// RateMeanHz is the mean tick rate over the window.
	RateMeanHz float64

	// RateStdDev is the standard deviation of instantaneous rates.
	RateStdDev float64

	// RateMinHz and RateMaxHz bound the instantaneous rates.
	RateMinHz float64
	RateMaxHz float64

	// JitterMean is the mean absolute deviation from the expected
	// inter-tick interval, in seconds.
	JitterMean float64

	// JitterMax is the worst observed deviation, in seconds.
	JitterMax float64

	// IsSteady is true when rate stddev < 15% of mean AND mean jitter
	// < 20% of the expected interval.
	IsSteady bool
}

// CalculateCadenceStats derives rate and jitter statistics from tick
// timestamps.
//
// This function:
//  1. Calculates mean rate (overall)
//  2. Calculates instantaneous rate for each tick interval
//  3. Finds min/max instantaneous rate
//  4. Calculates standard deviation of instantaneous rates
//  5. Calculates jitter (deviation from the expected interval)
//  6. Determines steadiness (stddev < 15% of mean AND jitter < 20%)
func CalculateCadenceStats(tickTimes []time.Time, totalDuration time.Duration) *CadenceStats {
	n := len(tickTimes)

	if n == 0 || totalDuration <= 0 {
		return &CadenceStats{Duration: totalDuration}
	}

	rateMean := float64(n) / totalDuration.Seconds()

	instantRates := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		interval := tickTimes[i].Sub(tickTimes[i-1]).Seconds()
		if interval > 0 {
			instantRates = append(instantRates, 1.0/interval)
		}
	}

	if len(instantRates) == 0 {
		return &CadenceStats{
			TicksObserved: n,
			Duration:      totalDuration,
			RateMeanHz:    rateMean,
		}
	}

	rateMin, rateMax := instantRates[0], instantRates[0]
	for _, r := range instantRates {
		if r < rateMin {
			rateMin = r
		}
		if r > rateMax {
			rateMax = r
		}
	}

	var sumSquares float64
	for _, r := range instantRates {
		diff := r - rateMean
		sumSquares += diff * diff
	}
	rateStdDev := math.Sqrt(sumSquares / float64(len(instantRates)))

	expectedInterval := 1.0 / rateMean

	var jitterSum, jitterMax float64
	for i := 1; i < n; i++ {
		jitter := math.Abs(tickTimes[i].Sub(tickTimes[i-1]).Seconds() - expectedInterval)
		jitterSum += jitter
		if jitter > jitterMax {
			jitterMax = jitter
		}
	}
	jitterMean := jitterSum / float64(n-1)

	rateSteady := rateStdDev < rateMean*rateStabilityThreshold
	jitterSteady := jitterMean < expectedInterval*jitterStabilityThreshold

	return &CadenceStats{
		TicksObserved: n,
		Duration:      totalDuration,
		RateMeanHz:    rateMean,
		RateStdDev:    rateStdDev,
		RateMinHz:     rateMin,
		RateMaxHz:     rateMax,
		JitterMean:    jitterMean,
		JitterMax:     jitterMax,
		IsSteady:      rateSteady && jitterSteady,
	}
}
