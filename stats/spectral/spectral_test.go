package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ephys/dsp/spectrum"
	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func axis(n int, df float64) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = float64(i) * df
	}

	return f
}

func TestCalculateSingleBinPeak(t *testing.T) {
	freqs := axis(11, 1)
	psd := make([]float64, 11)
	psd[4] = 2

	s, err := Calculate(freqs, psd)
	if err != nil {
		t.Fatal(err)
	}

	if s.PeakFreq != 4 || s.PeakPower != 2 {
		t.Fatalf("peak = %g Hz / %g, want 4 Hz / 2", s.PeakFreq, s.PeakPower)
	}

	if s.Centroid != 4 || s.Spread != 0 {
		t.Fatalf("centroid/spread = %g/%g, want 4/0", s.Centroid, s.Spread)
	}

	if s.Edge != 4 || s.Rolloff != 4 {
		t.Fatalf("edge/rolloff = %g/%g, want 4/4", s.Edge, s.Rolloff)
	}

	if s.Flatness != 0 {
		t.Fatalf("flatness = %g, want 0", s.Flatness)
	}

	// crosses half power midway to each neighbour
	if math.Abs(s.Bandwidth-1) > 1e-12 {
		t.Fatalf("bandwidth = %g, want 1", s.Bandwidth)
	}

	if math.Abs(s.TotalPower-2) > 1e-12 {
		t.Fatalf("total = %g, want 2", s.TotalPower)
	}
}

func TestFlatSpectrum(t *testing.T) {
	freqs := axis(5, 2)
	psd := []float64{0, 1, 1, 1, 1}

	s, err := Calculate(freqs, psd)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(s.Flatness-1) > 1e-12 {
		t.Fatalf("flatness = %g, want 1", s.Flatness)
	}

	if s.Centroid != 5 {
		t.Fatalf("centroid = %g, want 5", s.Centroid)
	}
}

func TestCalculateShape(t *testing.T) {
	if _, err := Calculate([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrShape) {
		t.Fatalf("err = %v, want ErrShape", err)
	}

	s, err := Calculate(nil, nil)
	if err != nil || s.BinCount != 0 {
		t.Fatalf("empty: %+v, %v", s, err)
	}
}

func TestThetaDominatedWelch(t *testing.T) {
	const fs = 250.0

	x := testutil.Add(
		testutil.DeterministicSine(7, fs, 1, 5000),
		testutil.GaussianNoise(3, 0.05, 5000),
	)

	est, err := spectrum.Welch(x, fs, spectrum.WithSegment(500))
	if err != nil {
		t.Fatal(err)
	}

	freqs, psd := est.Freqs, est.Power

	s, err := Calculate(freqs, psd)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(s.PeakFreq-7) > 0.5 {
		t.Fatalf("peak = %g Hz, want 7", s.PeakFreq)
	}

	ratio := BandRatio(freqs, psd, [2]float64{4, 10}, [2]float64{0.5, 4})
	if ratio < 10 {
		t.Fatalf("theta/delta = %g, want > 10", ratio)
	}

	rel := RelativePower(freqs, psd, [2]float64{4, 10})
	if rel < 0.8 || rel > 1 {
		t.Fatalf("relative theta = %g", rel)
	}

	if e := SpectralEdge(freqs, psd, 0.95); e < 7 || e > 125 {
		t.Fatalf("edge = %g", e)
	}
}
