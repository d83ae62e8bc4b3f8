// Package fftutil wraps the FFT backends used across the module.
//
// Power-of-two lengths run on cached algo-fft plans. Every other length goes
// through go-dsp's Bluestein transform, so callers never have to pad just to
// satisfy the FFT.
package fftutil

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	dspfft "github.com/mjibson/go-dsp/fft"
)

// ErrEmptyInput is returned when a transform is requested on no samples.
var ErrEmptyInput = errors.New("fftutil: empty input")

var (
	planMu sync.Mutex
	plans  = map[int]*algofft.Plan[complex128]{}
)

func plan(n int) (*algofft.Plan[complex128], error) {
	planMu.Lock()
	defer planMu.Unlock()

	if p, ok := plans[n]; ok {
		return p, nil
	}

	p, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("fftutil: plan %d: %w", n, err)
	}

	plans[n] = p

	return p, nil
}

// Forward returns the DFT of x. x is not modified.
func Forward(x []complex128) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyInput
	}

	if n == 1 || !IsPowerOf2(n) {
		return dspfft.FFT(x), nil
	}

	p, err := plan(n)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, n)
	if err := p.Forward(out, x); err != nil {
		return nil, fmt.Errorf("fftutil: forward: %w", err)
	}

	return out, nil
}

// Inverse returns the inverse DFT of X, scaled by 1/N.
func Inverse(X []complex128) ([]complex128, error) {
	n := len(X)
	if n == 0 {
		return nil, ErrEmptyInput
	}

	if n == 1 || !IsPowerOf2(n) {
		return dspfft.IFFT(X), nil
	}

	p, err := plan(n)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, n)
	if err := p.Inverse(out, X); err != nil {
		return nil, fmt.Errorf("fftutil: inverse: %w", err)
	}

	return out, nil
}

// RealForward returns the full complex spectrum of a real signal.
func RealForward(x []float64) ([]complex128, error) {
	return Forward(ToComplex(x))
}

// RealForwardN zero-pads (or truncates) x to n samples before transforming.
func RealForwardN(x []float64, n int) ([]complex128, error) {
	if n <= 0 {
		return nil, ErrEmptyInput
	}

	buf := make([]complex128, n)
	for i := 0; i < n && i < len(x); i++ {
		buf[i] = complex(x[i], 0)
	}

	return Forward(buf)
}

// OneSided keeps the non-negative frequency half of a real-input spectrum,
// n/2+1 bins.
func OneSided(X []complex128) []complex128 {
	out := make([]complex128, len(X)/2+1)
	copy(out, X)

	return out
}

// InverseOneSided rebuilds a length-n real signal from its n/2+1 one-sided
// bins (numpy irfft).
func InverseOneSided(half []complex128, n int) ([]float64, error) {
	if n <= 0 || len(half) == 0 {
		return nil, ErrEmptyInput
	}

	full := make([]complex128, n)
	for k := 0; k <= n/2 && k < len(half); k++ {
		full[k] = half[k]
	}
	// DC and Nyquist of a real signal carry no imaginary part.
	full[0] = complex(real(full[0]), 0)
	if n%2 == 0 {
		full[n/2] = complex(real(full[n/2]), 0)
	}

	for k := 1; k < (n+1)/2; k++ {
		full[n-k] = conj(full[k])
	}

	t, err := Inverse(full)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(t[i])
	}

	return out, nil
}

// ToComplex converts a real slice into complex samples.
func ToComplex(x []float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}

	return out
}

// RFFTFreq returns the n/2+1 sample frequencies of a real FFT of length n
// with sample spacing d.
func RFFTFreq(n int, d float64) []float64 {
	if n <= 0 || d <= 0 {
		return nil
	}

	out := make([]float64, n/2+1)
	for i := range out {
		out[i] = float64(i) / (float64(n) * d)
	}

	return out
}

// IsPowerOf2 reports whether n is a positive power of two.
func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOf2 returns the smallest power of two >= n.
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

// NextFastLen returns the smallest 5-smooth integer (2^a 3^b 5^c) >= n.
func NextFastLen(n int) int {
	if n <= 6 {
		if n < 1 {
			return 1
		}

		return n
	}

	best := NextPowerOf2(n)
	for p5 := 1; p5 < best; p5 *= 5 {
		for p35 := p5; p35 < best; p35 *= 3 {
			m := p35
			for m < n {
				m *= 2
			}

			if m < best {
				best = m
			}
		}
	}

	return best
}

func conj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
