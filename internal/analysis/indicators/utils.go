package indicators

import (
	"math"

	apperrors "stock-outlook/internal/errors"
)

// ErrInvalidPeriod is returned when an indicator parameter is not positive.
var ErrInvalidPeriod = apperrors.ErrInvalidPeriod

// nanSlice returns a series of n null values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// isFinite reports whether v is a usable number.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// windowClean reports whether every value in the window is usable.
func windowClean(values []float64) bool {
	for _, v := range values {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// sampleStdDev calculates the sample standard deviation (n-1 denominator).
// A window of fewer than two values has no spread and yields NaN.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// highest returns the highest value in a slice.
func highest(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	h := values[0]
	for _, v := range values[1:] {
		if v > h {
			h = v
		}
	}
	return h
}

// lowest returns the lowest value in a slice.
func lowest(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	l := values[0]
	for _, v := range values[1:] {
		if v < l {
			l = v
		}
	}
	return l
}

// ewm applies an exponential moving average with the given alpha, the
// recursive form y[i] = (1-alpha)*y[i-1] + alpha*x[i] seeded at the first
// usable input. Outputs stay NaN until minPeriods usable inputs have been
// observed. NaN inputs produce a NaN output at that index and leave the
// running state untouched.
func ewm(values []float64, alpha float64, minPeriods int) []float64 {
	out := nanSlice(len(values))

	var state float64
	seen := 0
	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		if seen == 0 {
			state = v
		} else {
			state = (1-alpha)*state + alpha*v
		}
		seen++
		if seen >= minPeriods {
			out[i] = state
		}
	}
	return out
}
