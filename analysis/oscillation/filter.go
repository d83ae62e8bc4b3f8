package oscillation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/dsp/filter/zerophase"
	"github.com/cwbudde/algo-ephys/dsp/spectrum"
)

var (
	// ErrSingleChannel is returned when a routine needs exactly one channel.
	ErrSingleChannel = errors.New("oscillation: signal must have a single channel")
	// ErrLengthMismatch is returned when paired traces differ in length.
	ErrLengthMismatch = errors.New("oscillation: length mismatch")
	// ErrFrequency is returned for analysis frequencies that are not
	// positive and finite.
	ErrFrequency = errors.New("oscillation: frequency must be > 0")
)

// FilterSignal band-passes every trace of sig between lf and hf Hz with a
// zero-phase Butterworth of the given order.
func FilterSignal(sig *core.Signal, lf, hf float64, order int) (*core.Signal, error) {
	traces, err := zerophase.BandpassRows(sig.Traces, lf, hf, sig.SamplingRate, order)
	if err != nil {
		return nil, fmt.Errorf("filter %g-%g Hz: %w", lf, hf, err)
	}

	return core.NewSignal(traces, sig.SamplingRate,
		core.WithTStart(sig.TStart), core.WithChannelIDs(slices.Clone(sig.ChannelIDs)))
}

// FilterBand band-passes sig with a named band from zerophase.
func FilterBand(sig *core.Signal, band zerophase.Band) (*core.Signal, error) {
	return FilterSignal(sig, band.Low, band.High, band.Order)
}

// Whiten flattens the spectrum of x; see spectrum.Whiten.
func Whiten(x []float64, psd func(f float64) float64, dt float64) ([]float64, error) {
	return spectrum.Whiten(x, psd, dt)
}

// MultitaperPSD averages Welch estimates over six Slepian tapers with
// time-halfbandwidth 5.
func MultitaperPSD(x []float64, fs float64, nperseg, noverlap int) (spectrum.PSD, error) {
	return spectrum.Multitaper(x, fs, nperseg, noverlap, 5, 6)
}

func singleTrace(sig *core.Signal) ([]float64, error) {
	if sig.NChannels() != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSingleChannel, sig.NChannels())
	}

	return sig.Traces[0], nil
}
