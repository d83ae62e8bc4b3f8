package butter

import (
	"math"

	"github.com/cwbudde/algo-ephys/dsp/filter/biquad"
)

// Lowpass designs an order-n lowpass Butterworth cascade with its -3 dB
// point at cutoff Hz.
func Lowpass(cutoff float64, order int, fs float64) (*biquad.Chain, error) {
	if err := validate(order, fs, cutoff); err != nil {
		return nil, err
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, lowpassSection(cutoff, butterworthQ(order, i), fs))
	}

	if order%2 != 0 {
		sections = append(sections, firstOrderLowpass(cutoff, fs))
	}

	return biquad.NewChain(sections), nil
}

// Highpass designs an order-n highpass Butterworth cascade with its -3 dB
// point at cutoff Hz.
func Highpass(cutoff float64, order int, fs float64) (*biquad.Chain, error) {
	if err := validate(order, fs, cutoff); err != nil {
		return nil, err
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, highpassSection(cutoff, butterworthQ(order, i), fs))
	}

	if order%2 != 0 {
		sections = append(sections, firstOrderHighpass(cutoff, fs))
	}

	return biquad.NewChain(sections), nil
}

// butterworthQ returns the quality factor of biquad section index
// (0 <= index < order/2).
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * s)
}

func lowpassSection(freq, q, fs float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 - cw) / 2 / a0,
		B1: (1 - cw) / a0,
		B2: (1 - cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func highpassSection(freq, q, fs float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 + cw) / 2 / a0,
		B1: -(1 + cw) / a0,
		B2: (1 + cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func firstOrderLowpass(freq, fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / fs)
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

func firstOrderHighpass(freq, fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / fs)
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}
