// Package zerophase runs Butterworth filters forward and backward so the
// output has no phase distortion, the standard way LFP bands are isolated
// before Hilbert phase or amplitude estimation.
//
// The signal is extended at both ends by an odd reflection and each pass
// starts from the cascade's steady state scaled to the first sample, which
// removes the start-up transient a zero initial state would cause.
package zerophase

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ephys/dsp/filter/biquad"
	"github.com/cwbudde/algo-ephys/dsp/filter/butter"
)

// DefaultSampleRate is the LFP sampling rate assumed by the band helpers
// when none is given.
const DefaultSampleRate = 1250.0

// ErrTooShort is returned when the signal is not longer than the edge
// padding the filter needs.
var ErrTooShort = errors.New("zerophase: signal shorter than filter padding")

// PadLen returns the number of samples reflected onto each end for chain.
func PadLen(chain *biquad.Chain) int {
	return 3 * (chain.Order() + 1)
}

// FiltFilt applies chain forward and then backward over x and returns the
// zero-phase result. chain's state is overwritten.
func FiltFilt(chain *biquad.Chain, x []float64) ([]float64, error) {
	pad := PadLen(chain)
	if len(x) <= pad {
		return nil, fmt.Errorf("%w: %d samples, padding %d", ErrTooShort, len(x), pad)
	}

	ext := oddExtend(x, pad)

	chain.SetSteadyState(ext[0])
	chain.ProcessBlock(ext)

	reverse(ext)
	chain.SetSteadyState(ext[0])
	chain.ProcessBlock(ext)
	reverse(ext)

	out := make([]float64, len(x))
	copy(out, ext[pad:pad+len(x)])

	return out, nil
}

// Bandpass band-passes x between lf and hf Hz with an order-n Butterworth
// run in both directions.
func Bandpass(x []float64, lf, hf, fs float64, order int) ([]float64, error) {
	chain, err := butter.Bandpass(lf, hf, order, fs)
	if err != nil {
		return nil, err
	}

	return FiltFilt(chain, x)
}

// Highpass removes content below cutoff Hz.
func Highpass(x []float64, cutoff, fs float64, order int) ([]float64, error) {
	chain, err := butter.Highpass(cutoff, order, fs)
	if err != nil {
		return nil, err
	}

	return FiltFilt(chain, x)
}

// Lowpass removes content above cutoff Hz.
func Lowpass(x []float64, cutoff, fs float64, order int) ([]float64, error) {
	chain, err := butter.Lowpass(cutoff, order, fs)
	if err != nil {
		return nil, err
	}

	return FiltFilt(chain, x)
}

// BandpassRows band-passes every row of traces with one shared design.
func BandpassRows(traces [][]float64, lf, hf, fs float64, order int) ([][]float64, error) {
	chain, err := butter.Bandpass(lf, hf, order, fs)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(traces))
	for i, row := range traces {
		y, err := FiltFilt(chain, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		out[i] = y
	}

	return out, nil
}

// oddExtend reflects pad samples about each endpoint:
// 2*x[0] - x[pad..1] on the left and 2*x[n-1] - x[n-2..n-1-pad] on the right.
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)

	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
		ext[pad+n+i] = 2*x[n-1] - x[n-2-i]
	}

	copy(ext[pad:], x)

	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
