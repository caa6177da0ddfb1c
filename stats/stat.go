// Package stats contains the small statistical helpers shared by the feature builder,
// estimators and seasonal decomposer.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PopStdDev returns the population standard deviation, dividing by n rather than n-1.
// An empty input yields 0.
func PopStdDev(x ...float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.PopStdDev(x, nil)
}

// PopVariance returns the population variance. An empty input yields 0.
func PopVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.PopVariance(x, nil)
}

// Mean returns the arithmetic mean. An empty input yields 0.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Clamp bounds v to [lo, hi]. NaN is mapped to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
