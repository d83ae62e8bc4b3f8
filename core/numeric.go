package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return math.Min(math.Max(value, lo), hi)
}

// NearlyEqual reports whether a and b are equal within eps, absolute or
// relative to the larger magnitude.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))

	return largest > 0 && diff/largest <= eps
}

// PowerToDB converts linear power to decibels (10*log10). Zero maps to
// -Inf and negative values to NaN.
func PowerToDB(power float64) float64 {
	switch {
	case power < 0:
		return math.NaN()
	case power == 0:
		return math.Inf(-1)
	default:
		return 10 * math.Log10(power)
	}
}

// frameIndex converts a time offset into the nearest frame index.
func frameIndex(t, tStart, fs float64) int {
	return int(math.Round((t - tStart) * fs))
}
