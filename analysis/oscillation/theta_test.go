package oscillation

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ephys/internal/testutil"
)

// skewedTheta builds an 8 Hz wave that rises over riseFrac of each cycle.
func skewedTheta(fs float64, n int, riseFrac float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		u := math.Mod(float64(i)/fs*8, 1)
		if u < riseFrac {
			out[i] = -math.Cos(math.Pi * u / riseFrac)
		} else {
			out[i] = -math.Cos(math.Pi + math.Pi*(u-riseFrac)/(1-riseFrac))
		}
	}

	return out
}

func mean(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v
	}

	return s / float64(len(x))
}

func TestThetaParamsHilbert(t *testing.T) {
	fs := 1250.0
	lfp := testutil.DeterministicSine(8, fs, 1, int(10*fs))

	th, err := ThetaParams(lfp, fs, ThetaHilbert)
	if err != nil {
		t.Fatal(err)
	}

	if len(th.Peak) != len(th.Trough) {
		t.Fatalf("%d peaks vs %d troughs", len(th.Peak), len(th.Trough))
	}

	if n := len(th.Peak); n < 77 || n > 81 {
		t.Fatalf("got %d cycles, want about 80", n)
	}

	for i := range th.Peak {
		if th.Trough[i] >= th.Peak[i] {
			t.Fatalf("cycle %d: trough %d not before peak %d", i, th.Trough[i], th.Peak[i])
		}
	}

	for _, p := range th.Peak[1 : len(th.Peak)-1] {
		if math.Abs(th.Angle[p]-180) > 5 {
			t.Fatalf("angle at peak %d = %.1f", p, th.Angle[p])
		}
	}

	testutil.RequireNearlyEqual(t, mean(th.RiseTime), 1.0/16, 0.003, "rise time")
	testutil.RequireNearlyEqual(t, mean(th.FallTime), 1.0/16, 0.003, "fall time")
	testutil.RequireNearlyEqual(t, mean(th.Asymmetry()), 0.5, 0.03, "asymmetry")
	testutil.RequireNearlyEqual(t, mean(th.PeakTrough()), 0.5, 0.05, "peak-trough ratio")

	if len(th.Amp) != len(lfp) || len(th.Filtered) != len(lfp) {
		t.Fatal("amp and filtered must cover the input")
	}
}

func TestThetaParamsWaveshape(t *testing.T) {
	fs := 1250.0
	lfp := skewedTheta(fs, int(10*fs), 0.35)

	th, err := ThetaParams(lfp, fs, ThetaWaveshape)
	if err != nil {
		t.Fatal(err)
	}

	for i := range th.Peak {
		if th.Angle[th.Trough[i]] != 0 {
			t.Fatalf("angle at trough %d = %g", th.Trough[i], th.Angle[th.Trough[i]])
		}

		if th.Angle[th.Peak[i]] != 180 {
			t.Fatalf("angle at peak %d = %g", th.Peak[i], th.Angle[th.Peak[i]])
		}
	}

	// rising half covers 0..180, falling half 180..360
	mid := (th.Trough[1] + th.Peak[1]) / 2
	if a := th.Angle[mid]; a <= 0 || a >= 180 {
		t.Fatalf("rising flank angle %g", a)
	}

	mid = (th.Peak[1] + th.Trough[2]) / 2
	if a := th.Angle[mid]; a <= 180 || a >= 360 {
		t.Fatalf("falling flank angle %g", a)
	}

	testutil.RequireNearlyEqual(t, mean(th.Asymmetry()), 0.35, 0.05, "asymmetry")

	rise, fall := th.RiseMid(), th.FallMid()
	if len(rise) != len(th.Trough) || len(fall) != len(th.Peak)-1 {
		t.Fatalf("mid-crossings: %d rise, %d fall", len(rise), len(fall))
	}

	for i := range fall {
		if !(rise[i] < th.Peak[i] && th.Peak[i] < fall[i] && fall[i] < th.Trough[i+1]) {
			t.Fatalf("cycle %d out of order: rise %d peak %d fall %d trough %d",
				i, rise[i], th.Peak[i], fall[i], th.Trough[i+1])
		}
	}

	for _, w := range th.PeakWidth() {
		if w <= 0 {
			t.Fatalf("non-positive peak width %g", w)
		}
	}
}

func TestBreakByPhase(t *testing.T) {
	fs := 1250.0
	lfp := testutil.DeterministicSine(8, fs, 1, int(5*fs))

	th, err := ThetaParams(lfp, fs, ThetaHilbert)
	if err != nil {
		t.Fatal(err)
	}

	bins, err := th.BreakByPhase(lfp, 90, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(bins) != 4 {
		t.Fatalf("got %d bins, want 4", len(bins))
	}

	total := 0
	for i, b := range bins {
		testutil.RequireNearlyEqual(t, b.Start, float64(90*i), 0, "bin start")
		testutil.RequireNearlyEqual(t, b.Center, float64(90*i)+45, 0, "bin center")
		total += len(b.Samples)
	}

	if total > len(lfp) || total < len(lfp)-5 {
		t.Fatalf("binned %d of %d samples", total, len(lfp))
	}

	// samples near the peak (180) are positive
	if m := mean(bins[2].Samples); m <= 0 {
		t.Fatalf("mean of 180-270 bin = %g", m)
	}

	slid, err := th.BreakByPhase(lfp, 90, 45)
	if err != nil {
		t.Fatal(err)
	}

	if len(slid) != 7 {
		t.Fatalf("sliding bins: got %d, want 7", len(slid))
	}

	if _, err := th.BreakByPhase(lfp[:10], 90, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestThetaMethodNames(t *testing.T) {
	for _, m := range []ThetaMethod{ThetaHilbert, ThetaWaveshape} {
		got, err := ParseThetaMethod(m.String())
		if err != nil || got != m {
			t.Fatalf("round trip %v: got %v, %v", m, got, err)
		}
	}

	if _, err := ParseThetaMethod("wavelet"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestThetaParamsTooShort(t *testing.T) {
	_, err := ThetaParams(make([]float64, 2000), 1250, ThetaHilbert)
	if !errors.Is(err, ErrThetaAlignment) {
		t.Fatalf("expected ErrThetaAlignment, got %v", err)
	}
}
