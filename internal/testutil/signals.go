package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude]
// with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// GaussianNoise generates N(0, sigma^2) samples with a fixed seed.
func GaussianNoise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}

	return out
}

// CoupledLFP synthesizes a theta-modulated gamma trace: a slow carrier at
// phaseHz plus a fast component at ampHz whose envelope follows the slow
// cycle. depth in [0, 1] sets the modulation strength.
func CoupledLFP(phaseHz, ampHz, depth, sampleRate float64, length int) []float64 {
	out := make([]float64, length)

	for i := range out {
		t := float64(i) / sampleRate
		slow := math.Sin(2 * math.Pi * phaseHz * t)
		env := 1 + depth*slow
		out[i] = slow + 0.3*env*math.Sin(2*math.Pi*ampHz*t)
	}

	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC generates a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Add returns the element-wise sum of equally long slices.
func Add(xs ...[]float64) []float64 {
	if len(xs) == 0 {
		return nil
	}

	out := make([]float64, len(xs[0]))
	for _, x := range xs {
		for i := range out {
			out[i] += x[i]
		}
	}

	return out
}
