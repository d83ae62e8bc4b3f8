package oscillation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ephys/dsp/smooth"
	"github.com/cwbudde/algo-ephys/dsp/spectrum"
	"github.com/cwbudde/algo-ephys/dsp/window"
	"github.com/cwbudde/algo-ephys/internal/fftutil"
)

// ErrFrequencyRange is returned when f1+f2 would index past the spectrum.
var ErrFrequencyRange = errors.New("oscillation: f1+f2 exceeds the spectrum")

// Bicoherence configures the bicoherence estimate. Window and Overlap are
// in samples.
type Bicoherence struct {
	FLow    float64
	FHigh   float64
	Fs      float64
	Window  int
	Overlap int
	Workers int
}

// DefaultBicoherence returns 1-150 Hz at 1250 Hz with 5000-sample windows
// overlapping by 2500 samples and 10 workers.
func DefaultBicoherence() Bicoherence {
	return Bicoherence{FLow: 1, FHigh: 150, Fs: 1250, Window: 5000, Overlap: 2500, Workers: 10}
}

// BicoherenceResult holds per-channel bicoherence matrices indexed
// [channel][f2][f1] over Freqs.
type BicoherenceResult struct {
	Bicoher      [][][]float64
	Bispec       [][][]complex128
	Freqs        []float64
	FreqIdx      []int
	DOF          int
	Significance float64
}

// Compute estimates the normalised bispectrum of each trace:
//
//	B(f1, f2) = mean(X1 X2 conj(X12)) / sqrt(mean|X1|^2 mean|X2|^2 mean|X12|^2)
//
// where X are STFT coefficients scaled by 1/Window and the means run over
// segments. Frequencies f1 are processed concurrently.
func (b Bicoherence) Compute(ctx context.Context, traces [][]float64) (*BicoherenceResult, error) {
	if len(traces) == 0 {
		return nil, spectrum.ErrEmptyInput
	}

	spectra := make([][][]complex128, len(traces))

	var freqs []float64

	for ch, tr := range traces {
		x := demean(tr)

		res, err := spectrum.STFT(x, b.Fs,
			spectrum.WithWindowType(window.TypeHann, 0),
			spectrum.WithSegment(b.Window),
			spectrum.WithOverlap(b.Overlap),
			spectrum.WithNFFT(fftutil.NextFastLen(b.Window)))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}

		scale := complex(1/float64(b.Window), 0)
		for _, row := range res.Coeffs {
			for k := range row {
				row[k] *= scale
			}
		}

		spectra[ch] = res.Coeffs
		freqs = res.Freqs
	}

	var idx []int

	for i, f := range freqs {
		if f > b.FLow && f < b.FHigh {
			idx = append(idx, i)
		}
	}

	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: no bins in (%g, %g) Hz", ErrFrequencyRange, b.FLow, b.FHigh)
	}

	if last := idx[len(idx)-1]; 2*last >= len(freqs) {
		return nil, fmt.Errorf("%w: bin %d + %d >= %d", ErrFrequencyRange, last, last, len(freqs))
	}

	nf := len(idx)
	res := &BicoherenceResult{
		Bicoher: make([][][]float64, len(traces)),
		Bispec:  make([][][]complex128, len(traces)),
		FreqIdx: idx,
	}

	for _, i := range idx {
		res.Freqs = append(res.Freqs, freqs[i])
	}

	for ch := range traces {
		res.Bicoher[ch] = make([][]float64, nf)
		res.Bispec[ch] = make([][]complex128, nf)

		for j := range nf {
			res.Bicoher[ch][j] = make([]float64, nf)
			res.Bispec[ch][j] = make([]complex128, nf)
		}
	}

	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for j1, i1 := range idx {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			for ch, sxx := range spectra {
				for j2, i2 := range idx {
					v := bispectrum(sxx[i1], sxx[i2], sxx[i1+i2])
					res.Bispec[ch][j2][j1] = v
					res.Bicoher[ch][j2][j1] = cmplx.Abs(v)
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.DOF = 2 * len(spectra[0][0])
	res.Significance = math.Sqrt(6 / float64(res.DOF))

	return res, nil
}

func bispectrum(x1, x2, x12 []complex128) complex128 {
	var (
		triple      complex128
		p1, p2, p12 float64
	)

	for t := range x1 {
		triple += x1[t] * x2[t] * cmplx.Conj(x12[t])
		p1 += sq(x1[t])
		p2 += sq(x2[t])
		p12 += sq(x12[t])
	}

	n := float64(len(x1))
	norm := math.Sqrt((p1 / n) * (p2 / n) * (p12 / n))

	return triple / complex(n*norm, 0)
}

func sq(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

func demean(x []float64) []float64 {
	mean := 0.0
	for _, v := range x {
		mean += v
	}

	mean /= float64(len(x))

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}

	return out
}

// Masked returns the bicoherence of one channel prepared for display: the
// redundant lower triangle and its mirror are zeroed, values below the
// significance level are zeroed, and the map is optionally smoothed by a
// Gaussian of sigma bins.
func (r *BicoherenceResult) Masked(ch int, sigma float64) ([][]float64, error) {
	if ch < 0 || ch >= len(r.Bicoher) {
		return nil, fmt.Errorf("oscillation: channel %d out of range", ch)
	}

	src := r.Bicoher[ch]
	n := len(src)

	out := make([][]float64, n)
	for i := range out {
		out[i] = append([]float64(nil), src[i]...)
	}

	for i := range n {
		for j := 0; j < i; j++ {
			out[i][j] = 0
			out[i][(n-j)%n] = 0
		}
	}

	for i := range out {
		for j, v := range out[i] {
			if v < r.Significance {
				out[i][j] = 0
			}
		}
	}

	if sigma > 0 {
		return smooth.Gaussian2D(out, sigma)
	}

	return out, nil
}
