package conv

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ephys/internal/fftutil"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// Mode specifies the output mode for convolution.
type Mode int

const (
	// ModeFull returns the full convolution, length len(a)+len(b)-1.
	ModeFull Mode = iota

	// ModeSame returns output with the length of the first input, centred
	// on the full result.
	ModeSame

	// ModeValid returns only the fully overlapping portion, length
	// max(len(a), len(b)) - min(len(a), len(b)) + 1.
	ModeValid
)

// directThreshold is the kernel length up to which time-domain convolution
// beats the FFT path.
const directThreshold = 64

// Direct performs time-domain linear convolution of a and b.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	out := make([]float64, len(a)+len(b)-1)
	temp := make([]float64, len(b))

	for i, x := range a {
		vecmath.ScaleBlock(temp, b, x)
		vecmath.AddBlockInPlace(out[i:i+len(b)], temp)
	}

	return out, nil
}

// Convolve performs real linear convolution in the given mode, picking the
// direct or FFT path by kernel length.
func Convolve(a, b []float64, mode Mode) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	var (
		full []float64
		err  error
	)

	if min(len(a), len(b)) <= directThreshold {
		full, err = Direct(a, b)
	} else {
		full, err = fftFull(a, b)
	}

	if err != nil {
		return nil, err
	}

	return trimToMode(full, len(a), len(b), mode), nil
}

func fftFull(a, b []float64) ([]float64, error) {
	n := len(a) + len(b) - 1
	size := fftutil.NextFastLen(n)

	A, err := fftutil.RealForwardN(a, size)
	if err != nil {
		return nil, err
	}

	B, err := fftutil.RealForwardN(b, size)
	if err != nil {
		return nil, err
	}

	for i := range A {
		A[i] *= B[i]
	}

	y, err := fftutil.Inverse(A)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(y[i])
	}

	return out, nil
}

// ConvolveComplex convolves a real signal with a complex kernel on the FFT
// path. Wavelet transforms use it with complex Morlet kernels.
func ConvolveComplex(signal []float64, kernel []complex128, mode Mode) ([]complex128, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}

	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	n := len(signal) + len(kernel) - 1
	size := fftutil.NextFastLen(n)

	S, err := fftutil.RealForwardN(signal, size)
	if err != nil {
		return nil, err
	}

	kbuf := make([]complex128, size)
	copy(kbuf, kernel)

	K, err := fftutil.Forward(kbuf)
	if err != nil {
		return nil, err
	}

	for i := range S {
		S[i] *= K[i]
	}

	full, err := fftutil.Inverse(S)
	if err != nil {
		return nil, err
	}

	full = full[:n]

	switch mode {
	case ModeSame:
		start := (len(kernel) - 1) / 2
		return full[start : start+len(signal)], nil
	case ModeValid:
		lo, hi := validRange(len(signal), len(kernel))
		return full[lo:hi], nil
	default:
		return full, nil
	}
}

// trimToMode extracts the requested portion of a full convolution result.
func trimToMode(full []float64, lenA, lenB int, mode Mode) []float64 {
	switch mode {
	case ModeSame:
		start := (lenB - 1) / 2
		return full[start : start+lenA]
	case ModeValid:
		lo, hi := validRange(lenA, lenB)
		return full[lo:hi]
	default:
		return full
	}
}

func validRange(lenA, lenB int) (int, int) {
	if lenA >= lenB {
		return lenB - 1, lenA
	}

	return lenA - 1, lenB
}
