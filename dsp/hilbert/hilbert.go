// Package hilbert computes the analytic signal of real traces by zeroing the
// negative frequencies of their FFT, and derives the instantaneous amplitude
// and phase used for oscillation analysis.
package hilbert

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-ephys/internal/fftutil"
)

// ErrEmptyInput is returned for empty traces.
var ErrEmptyInput = errors.New("hilbert: empty input")

// Analytic returns x + j*H{x} computed at length len(x).
func Analytic(x []float64) ([]complex128, error) {
	return analyticN(x, len(x))
}

// Fast returns the analytic signal computed on an FFT length padded to the
// next 5-smooth size and truncated back to len(x). Padding changes the
// result slightly at the trace ends in exchange for a fast transform.
func Fast(x []float64) ([]complex128, error) {
	h, err := analyticN(x, fftutil.NextFastLen(len(x)))
	if err != nil {
		return nil, err
	}

	return h[:len(x)], nil
}

func analyticN(x []float64, n int) ([]complex128, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	X, err := fftutil.RealForwardN(x, n)
	if err != nil {
		return nil, err
	}

	// h = [1, 2, ..., 2, (1), 0, ..., 0]
	for k := 1; k < n; k++ {
		switch {
		case n%2 == 0 && k == n/2:
		case k < (n+1)/2:
			X[k] *= 2
		default:
			X[k] = 0
		}
	}

	return fftutil.Inverse(X)
}

// Amplitude returns |h| for every sample.
func Amplitude(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = cmplx.Abs(v)
	}

	return out
}

// Power returns |h|^2 for every sample.
func Power(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = real(v)*real(v) + imag(v)*imag(v)
	}

	return out
}

// PhaseDegrees returns the instantaneous phase in (-180, 180].
func PhaseDegrees(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = cmplx.Phase(v) * 180 / math.Pi
	}

	return out
}

// Phase360 returns the instantaneous phase shifted into [0, 360], where 0
// and 360 fall on the trough of a cosine-like oscillation and 180 on its
// peak.
func Phase360(h []complex128) []float64 {
	out := PhaseDegrees(h)
	for i := range out {
		out[i] += 180
	}

	return out
}

// Envelope is a convenience for Amplitude(Fast(x)).
func Envelope(x []float64) ([]float64, error) {
	h, err := Fast(x)
	if err != nil {
		return nil, err
	}

	return Amplitude(h), nil
}
