package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// WeightedMean calculates the weighted mean of values with the given weights.
// Weights do not need to sum to one; they are passed through to gonum.
func WeightedMean(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	return stat.Mean(values, weights)
}

// Gini calculates the Gini coefficient of a distribution using the
// mean-absolute-difference formula:
//
//	G = Σ_i Σ_j |x_i − x_j| / (2 n² mean(x))
//
// A zero-mean distribution is treated as perfectly equal (G = 0).
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	mean := Mean(values)
	if mean == 0 {
		return 0
	}

	var sumAbsDiff float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sumAbsDiff += math.Abs(values[i] - values[j])
		}
	}

	return sumAbsDiff / (2 * float64(n*n) * mean)
}

// Clamp limits value to the range [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// PercentChange calculates the percentage change from baseline to value.
// A zero baseline yields 0 rather than dividing by zero.
func PercentChange(baseline, value float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (value - baseline) / baseline * 100
}
