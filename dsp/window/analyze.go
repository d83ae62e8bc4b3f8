package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Analysis holds numerically computed spectral properties of a window or
// taper.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// Bandwidth3dB is the two-sided half-power main lobe width in bins.
	Bandwidth3dB float64
	// FirstMinimumBins is the first spectral null in bins.
	FirstMinimumBins float64
	// HighestSidelobedB is the highest sidelobe relative to DC.
	HighestSidelobedB float64
	// ScallopLossdB is the response half a bin off centre.
	ScallopLossdB float64
}

// Analyze evaluates the window's DFT on a fine grid to measure its main
// lobe and sidelobes.
func Analyze(coeffs []float64) Analysis {
	n := len(coeffs)
	if n == 0 {
		return Analysis{}
	}

	dc := dftPower(coeffs, 0)
	if dc == 0 {
		return Analysis{}
	}

	sum := vecmath.Sum(coeffs)
	nf := float64(n)

	a := Analysis{
		CoherentGain:  sum / nf,
		ENBW:          nf * vecmath.DotProduct(coeffs, coeffs) / (sum * sum),
		ScallopLossdB: 10 * math.Log10(dftPower(coeffs, 0.5/nf)/dc),
	}

	lo, hi := 0.0, 0.5
	for range 80 {
		mid := (lo + hi) / 2
		if dftPower(coeffs, mid)/dc > 0.5 {
			lo = mid
		} else {
			hi = mid
		}
	}
	a.Bandwidth3dB = 2 * lo * nf

	step := 1 / (nf * 8)
	null := step
	prev := dc

	for f := step; f < 0.5; f += step {
		v := dftPower(coeffs, f)
		if prev < 0.1*dc && v > prev {
			null = f - step
			break
		}

		prev = v
	}
	a.FirstMinimumBins = null * nf

	peak := 0.0
	for f := null; f < 0.5; f += step / 4 {
		peak = math.Max(peak, dftPower(coeffs, f))
	}

	a.HighestSidelobedB = math.Inf(-1)
	if peak > 0 {
		a.HighestSidelobedB = 10 * math.Log10(peak/dc)
	}

	return a
}

// dftPower evaluates |W(f)|^2 at normalized frequency f in [0, 0.5].
func dftPower(coeffs []float64, f float64) float64 {
	re, im := 0.0, 0.0
	w := 2 * math.Pi * f

	for k, c := range coeffs {
		re += c * math.Cos(w*float64(k))
		im -= c * math.Sin(w*float64(k))
	}

	return re*re + im*im
}
