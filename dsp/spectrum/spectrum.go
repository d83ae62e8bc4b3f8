package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ephys/internal/fftutil"
)

// Errors returned by the estimators.
var (
	ErrEmptyInput    = errors.New("spectrum: empty input")
	ErrSampleRate    = errors.New("spectrum: sampling rate must be > 0")
	ErrSegmentLength = errors.New("spectrum: invalid segment length")
)

// Magnitude returns |X[k]| for each complex bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re, im := split(in)
	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)

	return out
}

// Power returns |X[k]|^2 for each complex bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re, im := split(in)
	out := make([]float64, len(in))
	vecmath.Power(out, re, im)

	return out
}

func split(in []complex128) ([]float64, []float64) {
	re := make([]float64, len(in))
	im := make([]float64, len(in))

	for i, c := range in {
		re[i], im[i] = real(c), imag(c)
	}

	return re, im
}

// UnwrapPhase returns a copy of phase with +/-2*pi jumps removed.
func UnwrapPhase(phase []float64) []float64 {
	if len(phase) == 0 {
		return nil
	}

	out := make([]float64, len(phase))
	out[0] = phase[0]
	offset := 0.0

	for i := 1; i < len(phase); i++ {
		d := phase[i] - phase[i-1]
		switch {
		case d > math.Pi:
			offset -= 2 * math.Pi
		case d < -math.Pi:
			offset += 2 * math.Pi
		}

		out[i] = phase[i] + offset
	}

	return out
}

// InterpolateLinear evaluates the piecewise-linear curve (x, y) at queryX,
// holding the end values outside the data range. x must be strictly
// increasing.
func InterpolateLinear(x, y, queryX []float64) ([]float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("interpolate requires non-empty x and y")
	}

	if len(x) != len(y) {
		return nil, fmt.Errorf("interpolate x/y length mismatch: %d != %d", len(x), len(y))
	}

	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("interpolate x must be strictly increasing at index %d", i)
		}
	}

	out := make([]float64, len(queryX))
	for i, q := range queryX {
		switch {
		case q <= x[0]:
			out[i] = y[0]
		case q >= x[len(x)-1]:
			out[i] = y[len(y)-1]
		default:
			j := sort.SearchFloat64s(x, q)
			t := (q - x[j-1]) / (x[j] - x[j-1])
			out[i] = y[j-1] + t*(y[j]-y[j-1])
		}
	}

	return out, nil
}

// Trapz integrates y over x with the trapezoid rule.
func Trapz(y, x []float64) float64 {
	n := min(len(x), len(y))

	area := 0.0
	for i := 1; i < n; i++ {
		area += 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
	}

	return area
}

// BandIndices returns the indices of freqs strictly between lo and hi.
func BandIndices(freqs []float64, lo, hi float64) []int {
	var idx []int

	for i, f := range freqs {
		if f > lo && f < hi {
			idx = append(idx, i)
		}
	}

	return idx
}

// BandPower integrates psd over the open band (lo, hi).
func BandPower(freqs, psd []float64, lo, hi float64) float64 {
	idx := BandIndices(freqs, lo, hi)

	f := make([]float64, len(idx))
	p := make([]float64, len(idx))
	for k, i := range idx {
		f[k], p[k] = freqs[i], psd[i]
	}

	return Trapz(p, f)
}

// FFTNormalized returns the single-sided amplitude spectrum 2/N*|X| of x
// over N/2 bins, with a frequency axis spanning [0, fs/2] in N/2 points.
func FFTNormalized(x []float64, fs float64) ([]float64, []float64, error) {
	if len(x) == 0 {
		return nil, nil, ErrEmptyInput
	}

	if fs <= 0 {
		return nil, nil, ErrSampleRate
	}

	X, err := fftutil.RealForward(x)
	if err != nil {
		return nil, nil, err
	}

	n := len(x)
	half := n / 2

	amp := Magnitude(X[:half])
	vecmath.ScaleBlockInPlace(amp, 2/float64(n))

	return amp, linspace(0, fs/2, half), nil
}

// Whiten flattens the spectrum of x by dividing each rFFT bin by the
// square root of psd evaluated at that frequency. dt is the sample spacing
// in seconds.
func Whiten(x []float64, psd func(f float64) float64, dt float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	if dt <= 0 {
		return nil, ErrSampleRate
	}

	n := len(x)

	X, err := fftutil.RealForward(x)
	if err != nil {
		return nil, err
	}

	half := fftutil.OneSided(X)
	freqs := fftutil.RFFTFreq(n, dt)
	norm := 1 / math.Sqrt(1/(2*dt))

	for k := range half {
		half[k] *= complex(norm/math.Sqrt(psd(freqs[k])), 0)
	}

	return fftutil.InverseOneSided(half, n)
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}

	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	return out
}
