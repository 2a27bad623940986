// Package formulas provides small reusable market-math helpers.
package formulas

import (
	"github.com/markcheno/go-talib"
)

// RollingAverage computes the rolling average of the most recent
// `window` values. When fewer than `window` samples exist it falls back
// to a plain mean, and below `minSamples` it returns nil — callers must
// report "insufficient data" rather than a misleading ratio.
//
// Values are expected oldest-first.
func RollingAverage(values []float64, window, minSamples int) *float64 {
	if minSamples <= 0 {
		minSamples = 1
	}
	if len(values) < minSamples {
		return nil
	}

	if len(values) >= window && window > 1 {
		sma := talib.Sma(values, window)
		last := sma[len(sma)-1]
		if !isNaN(last) {
			return &last
		}
		return nil
	}

	mean := Mean(values)
	return &mean
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SafeRatio divides a by b, returning 0 when b is 0. Every cohort or
// volume ratio in the engine goes through this guard so degenerate
// inputs never produce NaN or Inf.
func SafeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
