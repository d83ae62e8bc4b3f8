package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ephys/dsp/window"
)

// STFTResult holds complex short-time Fourier coefficients indexed
// [freq][time].
type STFTResult struct {
	Freqs  []float64
	Times  []float64
	Coeffs [][]complex128
}

// STFT computes the short-time Fourier transform of x. The trace is padded
// with nperseg/2 zeros at both ends and then with zeros up to a whole
// number of steps, so segments are centred on t = 0, step/fs, ... .
// Coefficients are scaled by 1/sum(w), so a sinusoid of amplitude A shows
// up with magnitude A/2. Defaults: periodic Hann, 256-sample segments,
// half overlap, no detrending.
func STFT(x []float64, fs float64, opts ...Option) (STFTResult, error) {
	cfg := config{windowType: window.TypeHann}
	for _, o := range opts {
		o(&cfg)
	}

	if err := validateInput(x, fs); err != nil {
		return STFTResult{}, err
	}

	if err := cfg.resolve(math.MaxInt, func(n int) int { return n / 2 }); err != nil {
		return STFTResult{}, err
	}

	half := cfg.nperseg / 2
	step := cfg.step()

	padded := make([]float64, len(x)+2*half)
	copy(padded[half:], x)

	if extra := (-(len(padded) - cfg.nperseg) % step + step) % step; extra > 0 {
		padded = append(padded, make([]float64, extra%cfg.nperseg)...)
	}

	bins, err := segmentSpectra(padded, &cfg, 1/vecmath.Sum(cfg.window))
	if err != nil {
		return STFTResult{}, err
	}

	times := segmentTimes(len(bins), &cfg, fs)
	for k := range times {
		times[k] -= float64(cfg.nperseg) / 2 / fs
	}

	return STFTResult{
		Freqs:  freqAxis(cfg.nfft, fs),
		Times:  times,
		Coeffs: transposeComplex(bins),
	}, nil
}

// Spectrogram computes a power spectral density for each segment of x.
// Defaults: periodic Tukey(0.25) window, 256-sample segments, nperseg/8
// overlap, per-segment mean removal. Times are segment centres.
func Spectrogram(x []float64, fs float64, opts ...Option) (TimeFrequency, error) {
	cfg := config{windowType: window.TypeTukey, alpha: 0.25, detrend: true}
	for _, o := range opts {
		o(&cfg)
	}

	if err := validateInput(x, fs); err != nil {
		return TimeFrequency{}, err
	}

	if err := cfg.resolve(len(x), func(n int) int { return n / 8 }); err != nil {
		return TimeFrequency{}, err
	}

	bins, err := segmentSpectra(x, &cfg, math.Sqrt(densityScale(cfg.window, fs)))
	if err != nil {
		return TimeFrequency{}, err
	}

	cols := make([][]float64, len(bins))
	for k, b := range bins {
		cols[k] = oneSidedPower(b, cfg.nfft)
	}

	return TimeFrequency{
		Freqs: freqAxis(cfg.nfft, fs),
		Times: segmentTimes(len(bins), &cfg, fs),
		Power: transpose(cols),
	}, nil
}

// MultitaperSpectrogram averages spectrograms computed with each of the
// first k Slepian tapers of length nperseg.
func MultitaperSpectrogram(x []float64, fs float64, nperseg, noverlap int, nw float64, k int) (TimeFrequency, error) {
	tapers, _, err := window.DPSS(nperseg, nw, k)
	if err != nil {
		return TimeFrequency{}, err
	}

	var out TimeFrequency

	for i, taper := range tapers {
		tf, err := Spectrogram(x, fs, WithWindow(taper), WithOverlap(noverlap))
		if err != nil {
			return TimeFrequency{}, err
		}

		if i == 0 {
			out = tf
			continue
		}

		for f := range out.Power {
			vecmath.AddBlockInPlace(out.Power[f], tf.Power[f])
		}
	}

	for f := range out.Power {
		vecmath.ScaleBlockInPlace(out.Power[f], 1/float64(len(tapers)))
	}

	return out, nil
}

func transpose(cols [][]float64) [][]float64 {
	if len(cols) == 0 {
		return nil
	}

	rows := make([][]float64, len(cols[0]))
	for f := range rows {
		rows[f] = make([]float64, len(cols))
		for t := range cols {
			rows[f][t] = cols[t][f]
		}
	}

	return rows
}

func transposeComplex(cols [][]complex128) [][]complex128 {
	if len(cols) == 0 {
		return nil
	}

	rows := make([][]complex128, len(cols[0]))
	for f := range rows {
		rows[f] = make([]complex128, len(cols))
		for t := range cols {
			rows[f][t] = cols[t][f]
		}
	}

	return rows
}
