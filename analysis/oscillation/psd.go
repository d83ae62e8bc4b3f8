package oscillation

import (
	"fmt"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/dsp/filter/zerophase"
	"github.com/cwbudde/algo-ephys/dsp/hilbert"
	"github.com/cwbudde/algo-ephys/dsp/spectrum"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

// PSDAUC returns, per channel, the area under the Welch spectrum of the
// z-scored trace between band[0] and band[1] (both exclusive). window and
// overlap are in seconds.
func PSDAUC(sig *core.Signal, band [2]float64, window, overlap float64) ([]float64, error) {
	fs := sig.SamplingRate
	nperseg := int(window * fs)
	noverlap := int(overlap * fs)

	out := make([]float64, sig.NChannels())
	for i, tr := range sig.Traces {
		psd, err := spectrum.Welch(desc.ZScore(tr), fs,
			spectrum.WithSegment(nperseg), spectrum.WithOverlap(noverlap))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}

		out[i] = spectrum.BandPower(psd.Freqs, psd.Power, band[0], band[1])
	}

	return out, nil
}

// AmplitudeStat names the summary used by HilbertAmplitudeStat.
type AmplitudeStat string

const (
	StatMean   AmplitudeStat = "mean"
	StatMedian AmplitudeStat = "median"
	StatStd    AmplitudeStat = "std"
)

func (s AmplitudeStat) fn() (func([]float64) float64, error) {
	switch s {
	case StatMean:
		return desc.Mean, nil
	case StatMedian:
		return desc.Median, nil
	case StatStd:
		return desc.PopStd, nil
	default:
		return nil, fmt.Errorf("oscillation: unknown amplitude statistic %q", string(s))
	}
}

// HilbertAmplitudeStat summarizes the band envelope of each signal.
func HilbertAmplitudeStat(signals [][]float64, band [2]float64, fs float64, stat AmplitudeStat) ([]float64, error) {
	fn, err := stat.fn()
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(signals))
	for i, x := range signals {
		filtered, err := zerophase.Bandpass(x, band[0], band[1], fs, 3)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}

		env, err := hilbert.Envelope(filtered)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}

		out[i] = fn(env)
	}

	return out, nil
}

// PhaseExtraction holds y split by theta phase.
type PhaseExtraction struct {
	// Starts and Centers are the window starts and mean degrees.
	Starts  []float64
	Centers []float64
	// Samples[i] are the samples of y whose phase falls in window i.
	Samples [][]float64
}

// PhaseSpecificExtraction splits y by the 1-25 Hz phase of lfp. Windows
// span binsize consecutive whole degrees out of 0..360 and start every
// slideby degrees (binsize when slideby <= 0); both window ends are
// inclusive.
func PhaseSpecificExtraction(lfp, y []float64, fs float64, binsize, slideby int) (*PhaseExtraction, error) {
	if len(lfp) != len(y) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(lfp), len(y))
	}

	if binsize < 1 || binsize > 361 {
		return nil, fmt.Errorf("oscillation: phase bin size must be in [1, 361]: %d", binsize)
	}

	if slideby <= 0 {
		slideby = binsize
	}

	phase, err := thetaPhase(lfp, fs)
	if err != nil {
		return nil, err
	}

	out := &PhaseExtraction{}
	for start := 0; start+binsize-1 <= 360; start += slideby {
		lo, hi := float64(start), float64(start+binsize-1)

		var samples []float64
		for i, p := range phase {
			if p >= lo && p <= hi {
				samples = append(samples, y[i])
			}
		}

		out.Starts = append(out.Starts, lo)
		out.Centers = append(out.Centers, (lo+hi)/2)
		out.Samples = append(out.Samples, samples)
	}

	return out, nil
}

func thetaPhase(lfp []float64, fs float64) ([]float64, error) {
	filt, err := zerophase.Bandpass(lfp, 1, 25, fs, 3)
	if err != nil {
		return nil, err
	}

	h, err := hilbert.Fast(filt)
	if err != nil {
		return nil, err
	}

	return hilbert.Phase360(h), nil
}
