package spectrum

import (
	"math"

	"github.com/cwbudde/algo-ephys/dsp/window"
)

// PSD is a one-sided power spectral density in units^2/Hz.
type PSD struct {
	Freqs []float64
	Power []float64
}

// TimeFrequency is a power map with rows indexed by frequency and columns
// by time.
type TimeFrequency struct {
	Freqs []float64
	Times []float64
	Power [][]float64
}

// Welch estimates the PSD of x by averaging modified periodograms of
// overlapping segments. Defaults: periodic Hann, 256-sample segments, half
// overlap, per-segment mean removal.
func Welch(x []float64, fs float64, opts ...Option) (PSD, error) {
	cfg := config{windowType: window.TypeHann, detrend: true}
	for _, o := range opts {
		o(&cfg)
	}

	if err := validateInput(x, fs); err != nil {
		return PSD{}, err
	}

	if err := cfg.resolve(len(x), func(n int) int { return n / 2 }); err != nil {
		return PSD{}, err
	}

	bins, err := segmentSpectra(x, &cfg, math.Sqrt(densityScale(cfg.window, fs)))
	if err != nil {
		return PSD{}, err
	}

	psd := make([]float64, cfg.nfft/2+1)
	for _, b := range bins {
		for i, p := range oneSidedPower(b, cfg.nfft) {
			psd[i] += p
		}
	}

	for i := range psd {
		psd[i] /= float64(len(bins))
	}

	return PSD{Freqs: freqAxis(cfg.nfft, fs), Power: psd}, nil
}

// Multitaper averages Welch estimates over the first k Slepian tapers of
// length nperseg with time-halfbandwidth nw.
func Multitaper(x []float64, fs float64, nperseg, noverlap int, nw float64, k int) (PSD, error) {
	tapers, _, err := window.DPSS(nperseg, nw, k)
	if err != nil {
		return PSD{}, err
	}

	var out PSD

	for i, taper := range tapers {
		p, err := Welch(x, fs, WithWindow(taper), WithOverlap(noverlap))
		if err != nil {
			return PSD{}, err
		}

		if i == 0 {
			out = p
			continue
		}

		for j := range out.Power {
			out.Power[j] += p.Power[j]
		}
	}

	for j := range out.Power {
		out.Power[j] /= float64(len(tapers))
	}

	return out, nil
}

func validateInput(x []float64, fs float64) error {
	if len(x) == 0 {
		return ErrEmptyInput
	}

	if fs <= 0 || math.IsNaN(fs) {
		return ErrSampleRate
	}

	return nil
}

func freqAxis(nfft int, fs float64) []float64 {
	out := make([]float64, nfft/2+1)
	for i := range out {
		out[i] = float64(i) * fs / float64(nfft)
	}

	return out
}
