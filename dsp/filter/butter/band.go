package butter

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/cwbudde/algo-ephys/dsp/filter/biquad"
)

// Bandpass designs a Butterworth bandpass between low and high Hz. order is
// the prototype order: the result has 2*order poles in order sections.
func Bandpass(low, high float64, order int, fs float64) (*biquad.Chain, error) {
	if err := validate(order, fs, low, high); err != nil {
		return nil, err
	}

	if low >= high {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidBand, low, high)
	}

	// Work on a sample rate of 2 so frequencies are in units of Nyquist.
	const fs2 = 4.0

	w1 := fs2 * math.Tan(math.Pi*low/fs)
	w2 := fs2 * math.Tan(math.Pi*high/fs)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	poles := make([]complex128, 0, 2*order)
	for _, p := range prototypePoles(order) {
		plp := p * complex(bw/2, 0)
		r := cmplx.Sqrt(plp*plp - complex(wo*wo, 0))
		poles = append(poles, plp+r, plp-r)
	}

	gain := math.Pow(bw, float64(order))
	den := complex(1, 0)
	for i, p := range poles {
		den *= complex(fs2, 0) - p
		poles[i] = (complex(fs2, 0) + p) / (complex(fs2, 0) - p)
	}

	gain *= math.Pow(fs2, float64(order)) / real(den)

	pairs := pairPoles(poles)
	sections := make([]biquad.Coefficients, len(pairs))
	for i, pr := range pairs {
		// every section carries one zero at z=1 and one at z=-1
		sections[i] = biquad.Coefficients{
			B0: 1,
			B2: -1,
			A1: -real(pr[0] + pr[1]),
			A2: real(pr[0] * pr[1]),
		}
	}

	return biquad.NewChain(sections, biquad.WithGain(gain)), nil
}

// prototypePoles returns the left-half-plane poles of the analog order-n
// Butterworth lowpass with unit cutoff.
func prototypePoles(n int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		m := float64(-n + 1 + 2*i)
		out[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*n)))
	}

	return out
}

// pairPoles groups a conjugate-closed pole set into second-order pairs:
// complex poles with their conjugates, leftover real poles with each other.
func pairPoles(poles []complex128) [][2]complex128 {
	const tol = 1e-12

	var (
		upper []complex128
		reals []float64
	)

	for _, p := range poles {
		switch {
		case math.Abs(imag(p)) <= tol*math.Max(1, cmplx.Abs(p)):
			reals = append(reals, real(p))
		case imag(p) > 0:
			upper = append(upper, p)
		}
	}

	// Poles closest to the unit circle go last, where the signal has already
	// been attenuated by the better-damped sections.
	slices.SortFunc(upper, func(a, b complex128) int {
		return cmp.Compare(cmplx.Abs(a), cmplx.Abs(b))
	})
	slices.Sort(reals)

	out := make([][2]complex128, 0, len(poles)/2)
	for i := 0; i+1 < len(reals); i += 2 {
		out = append(out, [2]complex128{complex(reals[i], 0), complex(reals[i+1], 0)})
	}

	for _, p := range upper {
		out = append(out, [2]complex128{p, cmplx.Conj(p)})
	}

	return out
}
