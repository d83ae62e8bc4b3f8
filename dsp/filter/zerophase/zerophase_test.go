package zerophase

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ephys/dsp/filter/butter"
	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func TestFiltFiltConstantPassesLowpass(t *testing.T) {
	x := testutil.DC(2.5, 500)

	y, err := Lowpass(x, 50, DefaultSampleRate, 6)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, y, x, 1e-9)
}

func TestBandpassKeepsInBandSineWithoutPhaseShift(t *testing.T) {
	const n = 5000

	theta := testutil.DeterministicSine(7, DefaultSampleRate, 1, n)
	gamma := testutil.DeterministicSine(80, DefaultSampleRate, 0.5, n)

	y, err := Theta.Filter(testutil.Add(theta, gamma), 0)
	if err != nil {
		t.Fatal(err)
	}

	// Ignore the edges, where padding still shows.
	core := y[1000 : n-1000]
	want := theta[1000 : n-1000]

	d, err := testutil.MaxAbsDiff(core, want)
	if err != nil {
		t.Fatal(err)
	}

	if d > 0.05 {
		t.Fatalf("theta sine distorted by %v", d)
	}
}

func TestHighpassRemovesOffset(t *testing.T) {
	x := testutil.Add(testutil.DC(10, 4000), testutil.DeterministicSine(40, DefaultSampleRate, 1, 4000))

	y, err := Highpass(x, 5, DefaultSampleRate, 4)
	if err != nil {
		t.Fatal(err)
	}

	mean := 0.0
	for _, v := range y[500:3500] {
		mean += v
	}

	mean /= 3000
	if math.Abs(mean) > 0.01 {
		t.Fatalf("residual offset %v", mean)
	}
}

func TestFiltFiltTooShort(t *testing.T) {
	chain, err := butter.Bandpass(4, 10, 3, DefaultSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if PadLen(chain) != 21 {
		t.Fatalf("PadLen = %d, want 21", PadLen(chain))
	}

	if _, err := FiltFilt(chain, make([]float64, 21)); !errors.Is(err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}

func TestOddExtend(t *testing.T) {
	ext := oddExtend([]float64{1, 2, 4, 8}, 2)
	testutil.RequireSliceNearlyEqual(t, ext, []float64{-2, 0, 1, 2, 4, 8, 12, 14}, 0)
}

func TestBandsLookup(t *testing.T) {
	b, err := Lookup("ripple")
	if err != nil {
		t.Fatal(err)
	}

	if b.Low != 150 || b.High != 240 {
		t.Fatalf("ripple = %v", b)
	}

	if _, err := Lookup("beta"); err == nil {
		t.Fatal("expected error for unknown band")
	}

	all := Bands()
	if len(all) != 7 || all[0].Name != "delta" || all[6].Name != "ripple" {
		t.Fatalf("Bands() order = %v", all)
	}
}

func TestBandpassRows(t *testing.T) {
	rows := [][]float64{
		testutil.DeterministicSine(7, DefaultSampleRate, 1, 2000),
		testutil.DeterministicNoise(1, 1, 2000),
	}

	out, err := BandpassRows(rows, 4, 10, DefaultSampleRate, 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 || len(out[1]) != 2000 {
		t.Fatalf("shape = %d x %d", len(out), len(out[1]))
	}

	testutil.RequireFinite(t, out[1])
}
