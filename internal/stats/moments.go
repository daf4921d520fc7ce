// Package stats provides the numeric helpers shared by the analyzers.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// PopVariance returns the population variance (mean of squared deviations)
// of xs, or 0 for an empty slice.
func PopVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(xs, nil)
	return variance
}

// PopStdDev returns the population standard deviation of xs.
func PopStdDev(xs []float64) float64 {
	return math.Sqrt(PopVariance(xs))
}

// CoefficientOfVariation returns the population standard deviation divided by
// the mean. A zero or empty mean yields 0.
func CoefficientOfVariation(xs []float64) float64 {
	mean := Mean(xs)
	if mean == 0 {
		return 0
	}
	return PopStdDev(xs) / mean
}

// Rate returns num/den, or fallback when den is zero.
func Rate(num, den int, fallback float64) float64 {
	if den <= 0 {
		return fallback
	}
	return float64(num) / float64(den)
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
