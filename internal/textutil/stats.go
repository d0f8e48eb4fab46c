package textutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// PopStd returns the population standard deviation, or 0 for fewer than two
// values. stat.MeanVariance is the unbiased estimate, rescaled here by
// (n-1)/n.
func PopStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	_, variance := stat.MeanVariance(values, nil)
	return math.Sqrt(variance * float64(n-1) / float64(n))
}

// CV is the coefficient of variation (population std over mean). A zero mean
// yields 0.
func CV(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return PopStd(values) / mean
}

// MinMax returns the extremes of values, or zeros for an empty slice.
func MinMax(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

// Ratio divides guarding against a zero denominator.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
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
