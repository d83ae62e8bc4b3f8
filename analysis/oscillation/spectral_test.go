package oscillation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func newSignal(t *testing.T, fs float64, traces ...[]float64) *core.Signal {
	t.Helper()

	sig, err := core.NewSignal(traces, fs)
	if err != nil {
		t.Fatal(err)
	}

	return sig
}

func TestFilterSignal(t *testing.T) {
	fs := 1250.0
	n := int(4 * fs)
	x := testutil.Add(testutil.DeterministicSine(8, fs, 1, n), testutil.DeterministicSine(100, fs, 1, n))

	sig, err := core.NewSignal([][]float64{x}, fs, core.WithTStart(2), core.WithChannelIDs([]int{7}))
	if err != nil {
		t.Fatal(err)
	}

	out, err := FilterSignal(sig, 5, 12, 3)
	if err != nil {
		t.Fatal(err)
	}

	if out.TStart != 2 || out.ChannelIDs[0] != 7 || out.SamplingRate != fs {
		t.Fatalf("metadata not kept: %+v", out)
	}

	mid := out.Traces[0][n/4 : 3*n/4]
	want := testutil.DeterministicSine(8, fs, 1, n)[n/4 : 3*n/4]

	if d, _ := testutil.MaxAbsDiff(mid, want); d > 0.05 {
		t.Fatalf("filtered trace deviates by %g", d)
	}
}

func TestFourierSpectrogram(t *testing.T) {
	fs := 250.0
	n := int(10 * fs)
	sig := newSignal(t, fs, testutil.Add(
		testutil.DeterministicSine(20, fs, 1, n),
		testutil.GaussianNoise(1, 0.1, n),
	))

	sg, err := FourierSpectrogram(sig)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireNearlyEqual(t, sg.SamplingRate, 2, 1e-12, "rate")
	testutil.RequireNearlyEqual(t, sg.TStart, 0.5, 1e-12, "tstart")

	if sg.NTimes() != 19 {
		t.Fatalf("got %d time bins, want 19", sg.NTimes())
	}

	best := 0
	for i := range sg.Freqs {
		if sg.Traces[i][5] > sg.Traces[best][5] {
			best = i
		}
	}

	testutil.RequireNearlyEqual(t, sg.Freqs[best], 20, 1, "peak frequency")

	query := []float64{10, 20, 30}

	sg2, err := FourierSpectrogram(sig, WithFreqs(query), WithSigma(1))
	if err != nil {
		t.Fatal(err)
	}

	if len(sg2.Traces) != 3 || sg2.NTimes() != 19 {
		t.Fatalf("shape %dx%d", len(sg2.Traces), sg2.NTimes())
	}

	if !(sg2.Traces[1][9] > sg2.Traces[0][9] && sg2.Traces[1][9] > sg2.Traces[2][9]) {
		t.Fatalf("20 Hz row not dominant: %v", []float64{sg2.Traces[0][9], sg2.Traces[1][9], sg2.Traces[2][9]})
	}

	mt, err := FourierSpectrogram(sig, WithMultitaper(), WithFreqs(query))
	if err != nil {
		t.Fatal(err)
	}

	if len(mt.Freqs) != 3 {
		t.Fatalf("multitaper freqs %v", mt.Freqs)
	}

	two := newSignal(t, fs, make([]float64, n), make([]float64, n))
	if _, err := FourierSpectrogram(two); !errors.Is(err, ErrSingleChannel) {
		t.Fatalf("expected ErrSingleChannel, got %v", err)
	}
}

func TestWaveletSpectrogram(t *testing.T) {
	fs := 250.0
	n := int(8 * fs)
	sig := newSignal(t, fs, testutil.DeterministicSine(10, fs, 1, n))

	freqs := []float64{5, 10, 20}

	sg, err := WaveletSpectrogram(context.Background(), sig, freqs, WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}

	if len(sg.Traces) != 3 || sg.NTimes() != n {
		t.Fatalf("shape %dx%d", len(sg.Traces), sg.NTimes())
	}

	mid := n / 2
	if !(sg.Traces[1][mid] > 3*sg.Traces[0][mid] && sg.Traces[1][mid] > 3*sg.Traces[2][mid]) {
		t.Fatalf("10 Hz not dominant at centre: %g %g %g", sg.Traces[0][mid], sg.Traces[1][mid], sg.Traces[2][mid])
	}

	// steady state envelope is flat away from the edges
	a, b := sg.Traces[1][mid], sg.Traces[1][mid+30]
	if math.Abs(a-b)/a > 0.02 {
		t.Fatalf("envelope not flat: %g vs %g", a, b)
	}
}

func TestWaveletSpectrogramFrequency(t *testing.T) {
	sig := newSignal(t, 250, testutil.DeterministicSine(10, 250, 1, 500))

	for _, f := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := WaveletSpectrogram(context.Background(), sig, []float64{10, f}); !errors.Is(err, ErrFrequency) {
			t.Fatalf("%g Hz: got %v, want ErrFrequency", f, err)
		}
	}
}

func TestMorletWavelet(t *testing.T) {
	w := MorletWavelet(10, 100, 7)
	if len(w) != 800 {
		t.Fatalf("got %d samples, want 800", len(w))
	}

	// centre sample t=0 carries the peak amplitude
	sigma := 7 / (2 * math.Pi * 10)
	want := 1 / math.Sqrt(sigma*math.Sqrt(math.Pi))

	testutil.RequireNearlyEqual(t, real(w[400]), want, 1e-12, "centre")
	testutil.RequireNearlyEqual(t, imag(w[400]), 0, 1e-12, "centre imag")
}

func TestPSDAUC(t *testing.T) {
	fs := 250.0
	n := int(30 * fs)

	sig := newSignal(t, fs,
		testutil.Add(testutil.DeterministicSine(8, fs, 1, n), testutil.GaussianNoise(1, 0.3, n)),
		testutil.GaussianNoise(2, 1, n),
	)

	auc, err := PSDAUC(sig, [2]float64{6, 10}, 10, 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(auc) != 2 {
		t.Fatalf("got %d channels", len(auc))
	}

	// z-scored, so the sine channel keeps most of its unit variance in band
	if auc[0] < 0.7 || auc[0] > 1.05 {
		t.Fatalf("theta channel area %g", auc[0])
	}

	if auc[1] > 0.1 {
		t.Fatalf("noise channel area %g", auc[1])
	}
}

func TestHilbertAmplitudeStat(t *testing.T) {
	fs := 1250.0
	n := int(10 * fs)
	x := testutil.DeterministicSine(8, fs, 2, n)

	m, err := HilbertAmplitudeStat([][]float64{x}, [2]float64{4, 12}, fs, StatMean)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireNearlyEqual(t, m[0], 2, 0.05, "mean envelope")

	med, err := HilbertAmplitudeStat([][]float64{x}, [2]float64{4, 12}, fs, StatMedian)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireNearlyEqual(t, med[0], 2, 0.02, "median envelope")

	sd, err := HilbertAmplitudeStat([][]float64{x}, [2]float64{4, 12}, fs, StatStd)
	if err != nil {
		t.Fatal(err)
	}

	if sd[0] > 0.2 {
		t.Fatalf("envelope std %g", sd[0])
	}

	if _, err := HilbertAmplitudeStat([][]float64{x}, [2]float64{4, 12}, fs, "max"); err == nil {
		t.Fatal("expected error for unknown statistic")
	}
}

func TestPhaseSpecificExtraction(t *testing.T) {
	fs := 1250.0
	n := int(5 * fs)
	lfp := testutil.DeterministicSine(8, fs, 1, n)

	res, err := PhaseSpecificExtraction(lfp, lfp, fs, 20, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Starts) != 18 || len(res.Samples) != 18 {
		t.Fatalf("got %d windows, want 18", len(res.Starts))
	}

	testutil.RequireNearlyEqual(t, res.Centers[0], 9.5, 0, "first centre")
	testutil.RequireNearlyEqual(t, res.Starts[17], 340, 0, "last start")

	// 0..19 degrees sits just after the trough, so y is negative there
	for _, v := range res.Samples[0] {
		if v > 0.1 {
			t.Fatalf("trough window holds %g", v)
		}
	}

	slid, err := PhaseSpecificExtraction(lfp, lfp, fs, 20, 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(slid.Starts) != 35 {
		t.Fatalf("sliding windows: got %d, want 35", len(slid.Starts))
	}

	if _, err := PhaseSpecificExtraction(lfp, lfp[:5], fs, 20, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestCSDClassic(t *testing.T) {
	nframes := 50
	lfp := make([][]float64, 5)

	for ch := range lfp {
		lfp[ch] = make([]float64, nframes)
	}

	// a sink on channel 2 at frame 25
	lfp[2][25] = -1

	c := CSD{LFP: lfp, Coords: []float64{0, 20, 40, 60, 80}, Fs: 1250}

	m, err := c.Classic()
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Map) != 3 || len(m.Map[0]) != nframes {
		t.Fatalf("shape %dx%d", len(m.Map), len(m.Map[0]))
	}

	testutil.RequireSliceNearlyEqual(t, m.Coords, []float64{20, 40, 60}, 0)
	testutil.RequireNearlyEqual(t, m.Time[0], -0.04, 1e-12, "first time")
	testutil.RequireNearlyEqual(t, m.Time[nframes-1], 0.04, 1e-12, "last time")

	if !(m.Map[1][25] < 0 && m.Map[0][25] > 0 && m.Map[2][25] > 0) {
		t.Fatalf("sink/source pattern wrong: %g %g %g", m.Map[0][25], m.Map[1][25], m.Map[2][25])
	}

	if _, err := (CSD{LFP: lfp[:2], Coords: []float64{0, 1}, Fs: 1250}).Classic(); err == nil {
		t.Fatal("expected error for two channels")
	}
}

func TestPowerCorrelation(t *testing.T) {
	fs := 250.0
	n := int(40 * fs)

	x := make([]float64, n)
	noise := testutil.GaussianNoise(5, 0.05, n)

	for i := range x {
		tt := float64(i) / fs
		env := 1 + 0.8*math.Sin(2*math.Pi*0.05*tt)
		x[i] = env*(math.Sin(2*math.Pi*20*tt)+math.Sin(2*math.Pi*40*tt)) + noise[i]
	}

	pc, err := PowerCorrelation(x, fs, 2, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	i20, i40 := -1, -1
	for i, f := range pc.Freqs {
		switch f {
		case 20:
			i20 = i
		case 40:
			i40 = i
		}
	}

	if i20 < 0 || i40 < 0 {
		t.Fatal("20 and 40 Hz bins not found")
	}

	if pc.Corr[i20][i40] < 0.9 {
		t.Fatalf("co-modulated bins correlate at %g", pc.Corr[i20][i40])
	}

	for i := range pc.Corr {
		if pc.Corr[i][i] != 0 {
			t.Fatalf("diagonal %d = %g", i, pc.Corr[i][i])
		}
	}

	band := [2]float64{10, 50}

	sub, err := PowerCorrelation(x, fs, 2, 1, &band)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range sub.Freqs {
		if f <= 10 || f >= 50 {
			t.Fatalf("frequency %g outside band", f)
		}
	}

	if len(sub.Corr) != len(sub.Freqs) {
		t.Fatalf("corr %d rows for %d freqs", len(sub.Corr), len(sub.Freqs))
	}
}
