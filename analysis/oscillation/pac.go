package oscillation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ephys/dsp/filter/zerophase"
	"github.com/cwbudde/algo-ephys/dsp/hilbert"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

var (
	// ErrBinSize is returned for phase bins outside (0, 360] degrees.
	ErrBinSize = errors.New("oscillation: phase bin size must be in (0, 360]")
	// ErrBandStep is returned by SlidingBands for a non-positive step or width.
	ErrBandStep = errors.New("oscillation: band step and width must be > 0")
)

// PAC configures phase-amplitude coupling between the phase of a slow band
// and the amplitude envelope of a fast band.
type PAC struct {
	PhaseBand [2]float64
	AmpBand   [2]float64
	BinSize   float64
	Fs        float64
}

// DefaultPAC returns theta (4-12 Hz) phase against slow gamma (25-50 Hz)
// amplitude in 9 degree bins at 1250 Hz.
func DefaultPAC() PAC {
	return PAC{PhaseBand: [2]float64{4, 12}, AmpBand: [2]float64{25, 50}, BinSize: 9, Fs: 1250}
}

// PACResult is the phase-binned amplitude distribution.
type PACResult struct {
	// Edges are the phase bin edges in degrees, 0..360.
	Edges []float64
	// Centers are the bin centres in degrees.
	Centers []float64
	// Amplitude is the mean amplitude per bin, normalised to sum 1.
	Amplitude []float64
	// ModulationIndex is the Tort index (log N - H(P)) / log N.
	ModulationIndex float64
}

// Compute bins the z-scored fast-band envelope by the slow-band phase.
func (p PAC) Compute(lfp []float64) (*PACResult, error) {
	if err := checkBinSize(p.BinSize); err != nil {
		return nil, err
	}

	phase, err := bandPhase(lfp, p.PhaseBand, p.Fs)
	if err != nil {
		return nil, err
	}

	amp, err := bandAmplitude(lfp, p.AmpBand, p.Fs)
	if err != nil {
		return nil, err
	}

	return phaseAmplitude(phase, amp, p.BinSize)
}

func checkBinSize(binsize float64) error {
	if !(binsize > 0 && binsize <= 360) {
		return fmt.Errorf("%w: %g", ErrBinSize, binsize)
	}

	return nil
}

func phaseAmplitude(phase, amp []float64, binsize float64) (*PACResult, error) {
	if err := checkBinSize(binsize); err != nil {
		return nil, err
	}

	nbins := int(360 / binsize)
	edges := desc.LinearEdges(0, 360, nbins)

	mean, err := desc.BinnedStatistic(phase, amp, edges, desc.Mean)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, v := range mean {
		if !math.IsNaN(v) {
			total += v
		}
	}

	centers := make([]float64, nbins)
	for i := range centers {
		centers[i] = edges[i] + binsize/2
		mean[i] /= total
	}

	return &PACResult{
		Edges:           edges,
		Centers:         centers,
		Amplitude:       mean,
		ModulationIndex: ModulationIndex(mean),
	}, nil
}

// ModulationIndex returns the Tort modulation index of a normalised
// phase-amplitude distribution: 0 for a flat distribution, 1 when all
// amplitude falls in one bin.
func ModulationIndex(p []float64) float64 {
	n := float64(len(p))
	if n < 2 {
		return 0
	}

	h := 0.0
	for _, v := range p {
		if v > 0 {
			h -= v * math.Log(v)
		}
	}

	return (math.Log(n) - h) / math.Log(n)
}

// bandPhase returns the Hilbert phase of the z-scored band in [0, 360).
func bandPhase(lfp []float64, band [2]float64, fs float64) ([]float64, error) {
	h, err := bandAnalytic(lfp, band, fs)
	if err != nil {
		return nil, err
	}

	return hilbert.Phase360(h), nil
}

// bandAmplitude returns the Hilbert envelope of the z-scored band.
func bandAmplitude(lfp []float64, band [2]float64, fs float64) ([]float64, error) {
	h, err := bandAnalytic(lfp, band, fs)
	if err != nil {
		return nil, err
	}

	return hilbert.Amplitude(h), nil
}

func bandAnalytic(lfp []float64, band [2]float64, fs float64) ([]complex128, error) {
	y, err := zerophase.Bandpass(lfp, band[0], band[1], fs, 3)
	if err != nil {
		return nil, fmt.Errorf("band %g-%g Hz: %w", band[0], band[1], err)
	}

	return hilbert.Fast(desc.ZScore(y))
}

// Comodulogram holds Tort modulation indices indexed [phase band][amp band].
type Comodulogram struct {
	PhaseBands [][2]float64
	AmpBands   [][2]float64
	MI         [][]float64
}

// ComputeComodulogram evaluates the modulation index for every pair of
// phase and amplitude bands. Phase bands are processed concurrently, at
// most workers at a time (GOMAXPROCS when workers <= 0).
func ComputeComodulogram(ctx context.Context, lfp []float64, fs float64, phaseBands, ampBands [][2]float64, binsize float64, workers int) (*Comodulogram, error) {
	if err := checkBinSize(binsize); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	amps := make([][]float64, len(ampBands))
	for j, band := range ampBands {
		a, err := bandAmplitude(lfp, band, fs)
		if err != nil {
			return nil, err
		}

		amps[j] = a
	}

	out := &Comodulogram{
		PhaseBands: phaseBands,
		AmpBands:   ampBands,
		MI:         make([][]float64, len(phaseBands)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, band := range phaseBands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			phase, err := bandPhase(lfp, band, fs)
			if err != nil {
				return err
			}

			row := make([]float64, len(ampBands))
			for j, a := range amps {
				r, err := phaseAmplitude(phase, a, binsize)
				if err != nil {
					return err
				}

				row[j] = r.ModulationIndex
			}

			out.MI[i] = row

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// SlidingBands returns bands [f, f+width] for f = lo, lo+step, ... with
// f+width <= hi.
func SlidingBands(lo, hi, width, step float64) ([][2]float64, error) {
	if !(step > 0 && width > 0) {
		return nil, fmt.Errorf("%w: width %g, step %g", ErrBandStep, width, step)
	}

	var out [][2]float64
	for f := lo; f+width <= hi+1e-9; f += step {
		out = append(out, [2]float64{f, f + width})
	}

	return out, nil
}
