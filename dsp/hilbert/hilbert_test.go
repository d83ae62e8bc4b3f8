package hilbert

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func TestAnalyticOfSineIsNegativeCosine(t *testing.T) {
	const n = 1000

	x := testutil.DeterministicSine(10, 1000, 1, n)

	h, err := Analytic(x)
	if err != nil {
		t.Fatal(err)
	}

	for i := range h {
		want := -math.Cos(2 * math.Pi * 10 * float64(i) / 1000)
		if math.Abs(real(h[i])-x[i]) > 1e-9 || math.Abs(imag(h[i])-want) > 1e-9 {
			t.Fatalf("sample %d: got %v, want %v%+vi", i, h[i], x[i], want)
		}
	}
}

func TestEnvelopeOfAMSignal(t *testing.T) {
	const (
		fs = 1250.0
		n  = 2500
	)

	x := make([]float64, n)
	env := make([]float64, n)
	for i := range x {
		tt := float64(i) / fs
		env[i] = 1 + 0.5*math.Sin(2*math.Pi*2*tt)
		x[i] = env[i] * math.Cos(2*math.Pi*100*tt)
	}

	got, err := Envelope(x)
	if err != nil {
		t.Fatal(err)
	}

	d, _ := testutil.MaxAbsDiff(got[200:n-200], env[200:n-200])
	if d > 0.02 {
		t.Fatalf("envelope error %v", d)
	}
}

func TestPhase360Range(t *testing.T) {
	h, err := Fast(testutil.DeterministicNoise(2, 1, 777))
	if err != nil {
		t.Fatal(err)
	}

	if len(h) != 777 {
		t.Fatalf("len = %d, want 777", len(h))
	}

	for i, p := range Phase360(h) {
		if p < 0 || p > 360 {
			t.Fatalf("phase[%d] = %v out of [0, 360]", i, p)
		}
	}
}

func TestCosinePeakAt180(t *testing.T) {
	const n = 1000

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 8 * float64(i) / n)
	}

	h, err := Analytic(x)
	if err != nil {
		t.Fatal(err)
	}

	// sample 0 is a cosine peak: phase 0 rad, shifted to 180
	testutil.RequireNearlyEqual(t, Phase360(h)[0], 180, 1e-6, "peak phase")
}

func TestEmpty(t *testing.T) {
	if _, err := Analytic(nil); err != ErrEmptyInput {
		t.Fatalf("err = %v", err)
	}
}
