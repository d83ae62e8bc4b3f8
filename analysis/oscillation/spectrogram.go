package oscillation

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/dsp/conv"
	"github.com/cwbudde/algo-ephys/dsp/smooth"
	"github.com/cwbudde/algo-ephys/dsp/spectrum"
	"github.com/cwbudde/algo-ephys/internal/fftutil"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

// SgOption configures FourierSpectrogram and WaveletSpectrogram.
type SgOption func(*sgConfig)

type sgConfig struct {
	window     float64
	overlap    float64
	normalize  bool
	freqs      []float64
	multitaper bool
	sigma      float64
	ncycles    float64
	workers    int
}

func defaultSgConfig() sgConfig {
	return sgConfig{
		window:    1,
		overlap:   0.5,
		normalize: true,
		ncycles:   7,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// WithWindow sets the Fourier segment length in seconds.
func WithWindow(sec float64) SgOption {
	return func(c *sgConfig) { c.window = sec }
}

// WithOverlap sets the overlap of adjacent Fourier segments in seconds.
func WithOverlap(sec float64) SgOption {
	return func(c *sgConfig) { c.overlap = sec }
}

// WithoutNormalize skips z-scoring the trace before the transform.
func WithoutNormalize() SgOption {
	return func(c *sgConfig) { c.normalize = false }
}

// WithFreqs resamples the Fourier spectrogram onto freqs by linear
// interpolation along frequency.
func WithFreqs(freqs []float64) SgOption {
	return func(c *sgConfig) { c.freqs = append([]float64(nil), freqs...) }
}

// WithMultitaper averages spectrograms over six Slepian tapers (NW = 5).
func WithMultitaper() SgOption {
	return func(c *sgConfig) { c.multitaper = true }
}

// WithSigma smooths every frequency row along time with a Gaussian of
// sigma seconds.
func WithSigma(sec float64) SgOption {
	return func(c *sgConfig) { c.sigma = sec }
}

// WithCycles sets the number of cycles of the Morlet wavelet.
func WithCycles(n float64) SgOption {
	return func(c *sgConfig) { c.ncycles = n }
}

// WithWorkers bounds the number of frequencies computed concurrently.
func WithWorkers(n int) SgOption {
	return func(c *sgConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// FourierSpectrogram computes the power spectrogram of a single-channel
// signal. Times are segment centres: the result starts at sig.TStart plus
// the first centre and is sampled at fs/step.
func FourierSpectrogram(sig *core.Signal, opts ...SgOption) (*core.Spectrogram, error) {
	cfg := defaultSgConfig()
	for _, o := range opts {
		o(&cfg)
	}

	trace, err := singleTrace(sig)
	if err != nil {
		return nil, err
	}

	if cfg.normalize {
		trace = desc.ZScore(trace)
	}

	fs := sig.SamplingRate
	nperseg := int(cfg.window * fs)
	noverlap := int(cfg.overlap * fs)

	var tf spectrum.TimeFrequency
	if cfg.multitaper {
		tf, err = spectrum.MultitaperSpectrogram(trace, fs, nperseg, noverlap, 5, 6)
	} else {
		tf, err = spectrum.Spectrogram(trace, fs, spectrum.WithSegment(nperseg), spectrum.WithOverlap(noverlap))
	}

	if err != nil {
		return nil, fmt.Errorf("fourier spectrogram: %w", err)
	}

	power, freqs := tf.Power, tf.Freqs
	if cfg.freqs != nil {
		if power, err = resampleFreqs(tf.Freqs, tf.Power, cfg.freqs); err != nil {
			return nil, err
		}

		freqs = cfg.freqs
	}

	rate := fs / float64(nperseg-noverlap)

	if cfg.sigma > 0 {
		if power, err = smoothRows(power, cfg.sigma*rate); err != nil {
			return nil, err
		}
	}

	return &core.Spectrogram{
		Traces:       power,
		Freqs:        freqs,
		SamplingRate: rate,
		TStart:       sig.TStart + tf.Times[0],
	}, nil
}

func resampleFreqs(freqs []float64, power [][]float64, query []float64) ([][]float64, error) {
	ncol := len(power[0])
	out := make([][]float64, len(query))

	for f := range out {
		out[f] = make([]float64, ncol)
	}

	col := make([]float64, len(freqs))
	for t := 0; t < ncol; t++ {
		for f := range freqs {
			col[f] = power[f][t]
		}

		v, err := spectrum.InterpolateLinear(freqs, col, query)
		if err != nil {
			return nil, err
		}

		for f := range v {
			out[f][t] = v[f]
		}
	}

	return out, nil
}

func smoothRows(m [][]float64, sigma float64) ([][]float64, error) {
	return smooth.Gaussian2DAxes(m, 0, sigma)
}

// WaveletSpectrogram computes |x * psi_f| for a complex Morlet wavelet at
// each frequency. The wavelet has ncycles cycles (sigma_t =
// ncycles/(2*pi*f)), unit energy normalisation (sigma_t*sqrt(pi))^-1/2 and
// support [-4, 4) s.
func WaveletSpectrogram(ctx context.Context, sig *core.Signal, freqs []float64, opts ...SgOption) (*core.Spectrogram, error) {
	cfg := defaultSgConfig()
	for _, o := range opts {
		o(&cfg)
	}

	for _, f := range freqs {
		if !(f > 0) || math.IsInf(f, 1) {
			return nil, fmt.Errorf("%w: wavelet at %g Hz", ErrFrequency, f)
		}
	}

	trace, err := singleTrace(sig)
	if err != nil {
		return nil, err
	}

	if cfg.normalize {
		trace = desc.ZScore(trace)
	}

	fs := sig.SamplingRate
	n := len(trace)

	padded := make([]float64, fftutil.NextFastLen(n))
	copy(padded, trace)

	out := make([][]float64, len(freqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	for i, f := range freqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			y, err := conv.ConvolveComplex(padded, MorletWavelet(f, fs, cfg.ncycles), conv.ModeSame)
			if err != nil {
				return fmt.Errorf("wavelet %g Hz: %w", f, err)
			}

			row := make([]float64, n)
			for k := range row {
				row[k] = cmplx.Abs(y[k])
			}

			out[i] = row

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.sigma > 0 {
		if out, err = smoothRows(out, cfg.sigma*fs); err != nil {
			return nil, err
		}
	}

	return &core.Spectrogram{
		Traces:       out,
		Freqs:        append([]float64(nil), freqs...),
		SamplingRate: fs,
		TStart:       sig.TStart,
	}, nil
}

// MorletWavelet samples a complex Morlet wavelet at frequency f on
// t = -4, -4+1/fs, ... < 4.
func MorletWavelet(f, fs, ncycles float64) []complex128 {
	n := int(math.Ceil(8 * fs))
	sigma := ncycles / (2 * math.Pi * f)
	a := 1 / math.Sqrt(sigma*math.Sqrt(math.Pi))

	w := make([]complex128, n)
	for k := range w {
		t := -4 + float64(k)/fs
		env := a * math.Exp(-t*t/(2*sigma*sigma))
		w[k] = complex(env, 0) * cmplx.Exp(complex(0, 2*math.Pi*f*t))
	}

	return w
}
