package spectrum

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ephys/dsp/window"
	"github.com/cwbudde/algo-ephys/internal/fftutil"
)

// Option configures a segment-based estimator.
type Option func(*config)

type config struct {
	window     []float64
	windowType window.Type
	alpha      float64
	nperseg    int
	noverlap   int
	nfft       int
	detrend    bool
	overlapSet bool
}

// WithWindow uses coeffs as the segment window; its length sets the
// segment length.
func WithWindow(coeffs []float64) Option {
	c := append([]float64(nil), coeffs...)
	return func(cfg *config) { cfg.window = c }
}

// WithWindowType selects a periodic window of the given type. alpha is the
// Tukey fraction or Gaussian std and is ignored by other types.
func WithWindowType(t window.Type, alpha float64) Option {
	return func(cfg *config) {
		cfg.windowType = t
		cfg.alpha = alpha
	}
}

// WithSegment sets the segment length in samples.
func WithSegment(nperseg int) Option {
	return func(cfg *config) { cfg.nperseg = nperseg }
}

// WithOverlap sets the number of samples shared by adjacent segments.
func WithOverlap(noverlap int) Option {
	return func(cfg *config) {
		cfg.noverlap = noverlap
		cfg.overlapSet = true
	}
}

// WithNFFT zero-pads each segment to nfft samples before transforming.
func WithNFFT(nfft int) Option {
	return func(cfg *config) { cfg.nfft = nfft }
}

// WithoutDetrend disables per-segment mean removal.
func WithoutDetrend() Option {
	return func(cfg *config) { cfg.detrend = false }
}

// resolve fills in segment length, window, overlap and FFT size. A window
// built from a type is clipped to the signal length; an explicit window
// longer than the signal is an error.
func (cfg *config) resolve(n int, defaultOverlap func(nperseg int) int) error {
	if cfg.window != nil {
		if len(cfg.window) > n {
			return fmt.Errorf("%w: window of %d samples exceeds signal of %d", ErrSegmentLength, len(cfg.window), n)
		}

		cfg.nperseg = len(cfg.window)
	} else {
		if cfg.nperseg <= 0 {
			cfg.nperseg = 256
		}

		cfg.nperseg = min(cfg.nperseg, n)
		cfg.window = window.Generate(cfg.windowType, cfg.nperseg, window.WithPeriodic(), window.WithAlpha(cfg.alpha))
	}

	if !cfg.overlapSet {
		cfg.noverlap = defaultOverlap(cfg.nperseg)
	}

	if cfg.noverlap < 0 || cfg.noverlap >= cfg.nperseg {
		return fmt.Errorf("%w: overlap %d with segment %d", ErrSegmentLength, cfg.noverlap, cfg.nperseg)
	}

	if cfg.nfft == 0 {
		cfg.nfft = cfg.nperseg
	}

	if cfg.nfft < cfg.nperseg {
		return fmt.Errorf("%w: nfft %d below segment %d", ErrSegmentLength, cfg.nfft, cfg.nperseg)
	}

	return nil
}

func (cfg *config) step() int {
	return cfg.nperseg - cfg.noverlap
}

// segmentSpectra returns the one-sided FFT of every windowed segment of x,
// scaled by scale. Segments start every step samples; a trailing partial
// segment is dropped.
func segmentSpectra(x []float64, cfg *config, scale float64) ([][]complex128, error) {
	step := cfg.step()
	nseg := (len(x) - cfg.noverlap) / step

	if nseg < 1 {
		return nil, fmt.Errorf("%w: no complete segment in %d samples", ErrSegmentLength, len(x))
	}

	out := make([][]complex128, nseg)
	seg := make([]float64, cfg.nperseg)

	for k := range out {
		copy(seg, x[k*step:k*step+cfg.nperseg])

		if cfg.detrend {
			mean := vecmath.Sum(seg) / float64(len(seg))
			for i := range seg {
				seg[i] -= mean
			}
		}

		vecmath.MulBlockInPlace(seg, cfg.window)

		X, err := fftutil.RealForwardN(seg, cfg.nfft)
		if err != nil {
			return nil, err
		}

		half := fftutil.OneSided(X)
		for i := range half {
			half[i] *= complex(scale, 0)
		}

		out[k] = half
	}

	return out, nil
}

// densityScale returns 1/(fs*sum(w^2)).
func densityScale(w []float64, fs float64) float64 {
	return 1 / (fs * vecmath.DotProduct(w, w))
}

// oneSidedPower converts scaled bins into a one-sided power density,
// doubling every bin except DC and, for even nfft, Nyquist.
func oneSidedPower(bins []complex128, nfft int) []float64 {
	p := Power(bins)

	last := len(p)
	if nfft%2 == 0 {
		last--
	}

	for i := 1; i < last; i++ {
		p[i] *= 2
	}

	return p
}

// segmentTimes returns segment centres in seconds.
func segmentTimes(nseg int, cfg *config, fs float64) []float64 {
	t := make([]float64, nseg)
	for k := range t {
		t[k] = (float64(cfg.nperseg)/2 + float64(k*cfg.step())) / fs
	}

	return t
}
