// Package spectral summarizes a power spectral density by its peak,
// shape and band power ratios.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-ephys/dsp/spectrum"
)

// ErrShape is returned when freqs and psd differ in length.
var ErrShape = errors.New("spectral: freqs and psd lengths differ")

// Stats holds descriptors of a one-sided PSD.
type Stats struct {
	BinCount   int
	TotalPower float64 // trapezoid area over all bins
	PeakFreq   float64
	PeakPower  float64
	Centroid   float64 // power-weighted mean frequency (Hz)
	Spread     float64 // power-weighted std around the centroid (Hz)
	Flatness   float64 // geometric over arithmetic mean, 0..1, DC excluded
	Edge       float64 // frequency below which 95% of the power lies
	Rolloff    float64 // frequency below which 85% of the power lies
	Bandwidth  float64 // half-power width around the peak (Hz)
}

// Calculate computes all descriptors. freqs must be increasing.
func Calculate(freqs, psd []float64) (Stats, error) {
	if len(freqs) != len(psd) {
		return Stats{}, fmt.Errorf("%w: %d != %d", ErrShape, len(freqs), len(psd))
	}

	n := len(psd)
	if n == 0 {
		return Stats{}, nil
	}

	s := Stats{BinCount: n}

	peak := floats.MaxIdx(psd)
	s.PeakFreq, s.PeakPower = freqs[peak], psd[peak]

	if n == 1 {
		return s, nil
	}

	s.TotalPower = spectrum.Trapz(psd, freqs)

	sum := floats.Sum(psd)
	if sum == 0 {
		return s, nil
	}

	s.Centroid = floats.Dot(freqs, psd) / sum

	sq := 0.0
	for i, p := range psd {
		d := freqs[i] - s.Centroid
		sq += d * d * p
	}

	s.Spread = math.Sqrt(sq / sum)
	s.Flatness = Flatness(psd)
	s.Edge = edge(freqs, psd, 0.95, sum)
	s.Rolloff = edge(freqs, psd, 0.85, sum)
	s.Bandwidth = halfPowerWidth(freqs, psd, peak)

	return s, nil
}

// Flatness returns exp(mean(log P)) / mean(P) over bins 1..N-1. Any zero
// bin gives 0.
func Flatness(psd []float64) float64 {
	if len(psd) < 2 {
		return 0
	}

	bins := psd[1:]

	mean := floats.Sum(bins) / float64(len(bins))
	if mean == 0 {
		return 0
	}

	logSum := 0.0
	for _, p := range bins {
		if p <= 0 {
			return 0
		}

		logSum += math.Log(p)
	}

	return math.Exp(logSum/float64(len(bins))) / mean
}

// SpectralEdge returns the frequency below which fraction (0..1) of the
// summed power lies.
func SpectralEdge(freqs, psd []float64, fraction float64) float64 {
	if len(psd) == 0 || len(freqs) != len(psd) {
		return 0
	}

	sum := floats.Sum(psd)
	if sum == 0 {
		return 0
	}

	return edge(freqs, psd, fraction, sum)
}

func edge(freqs, psd []float64, fraction, sum float64) float64 {
	threshold := fraction * sum
	cum := 0.0

	for i, p := range psd {
		cum += p
		if cum >= threshold {
			return freqs[i]
		}
	}

	return freqs[len(freqs)-1]
}

// halfPowerWidth locates the points on either side of the peak where the
// PSD falls to half its peak value, interpolating between bins.
func halfPowerWidth(freqs, psd []float64, peak int) float64 {
	n := len(psd)
	if psd[peak] <= 0 {
		return 0
	}

	threshold := psd[peak] / 2

	lower := freqs[0]
	for i := peak; i >= 1; i-- {
		if psd[i-1] <= threshold && psd[i] > threshold {
			lower = crossing(freqs[i-1], freqs[i], psd[i-1], psd[i], threshold)
			break
		}
	}

	upper := freqs[n-1]
	for i := peak; i < n-1; i++ {
		if psd[i+1] <= threshold && psd[i] > threshold {
			upper = crossing(freqs[i], freqs[i+1], psd[i], psd[i+1], threshold)
			break
		}
	}

	return max(0, upper-lower)
}

func crossing(f0, f1, p0, p1, threshold float64) float64 {
	if p1 == p0 {
		return (f0 + f1) / 2
	}

	return f0 + (threshold-p0)/(p1-p0)*(f1-f0)
}

// BandRatio returns the power in num divided by the power in den, each
// integrated over the open band. Theta/delta is BandRatio(f, p,
// [2]float64{4, 10}, [2]float64{0.5, 4}).
func BandRatio(freqs, psd []float64, num, den [2]float64) float64 {
	d := spectrum.BandPower(freqs, psd, den[0], den[1])
	if d == 0 {
		return math.NaN()
	}

	return spectrum.BandPower(freqs, psd, num[0], num[1]) / d
}

// RelativePower returns the power in band as a fraction of TotalPower.
func RelativePower(freqs, psd []float64, band [2]float64) float64 {
	total := spectrum.Trapz(psd, freqs)
	if total == 0 {
		return math.NaN()
	}

	return spectrum.BandPower(freqs, psd, band[0], band[1]) / total
}
