package events

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func TestContiguousRegions(t *testing.T) {
	got := ContiguousRegions([]bool{true, true, false, true, false, false, true})
	want := [][2]int{{0, 2}, {3, 4}, {6, 7}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if ContiguousRegions(nil) != nil {
		t.Fatal("empty input should give no regions")
	}
}

func TestThreshPeriods(t *testing.T) {
	arr := []float64{
		2, 2, 0, // leading period cut by the edge
		0, 3, 3, 0, // 3..5 -> [3, 5]
		0, 0, 1.5, 0, // peak below high
		0, 5, 0, 5, 0, // two bursts merged by distance
		0, 2, 2, // trailing, cut
	}

	p := ThreshParams{Low: 1, High: 2, MinDistance: 2, MinDuration: 1}

	got, err := ThreshPeriods(arr, p)
	if err != nil {
		t.Fatal(err)
	}

	want := [][2]int{{3, 5}, {11, 14}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	p.MinDuration = 3
	got, err = ThreshPeriods(arr, p)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got, [][2]int{{11, 14}}) {
		t.Fatalf("min duration: got %v", got)
	}

	if _, err := ThreshPeriods([]float64{0, 0, 0}, p); !errors.Is(err, ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}
}

func TestThreshEpochsMergesNeighbours(t *testing.T) {
	//                 0  1  2  3  4  5  6  7  8  9 10 11 12
	arr := []float64{0, 0, 2, 5, 2, 1, 3, 1, 0, 0, 4, 0, 0}

	ev, err := ThreshEpochs(arr, AtLeast(2.5), Unbounded, 0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	// peaks at 3 (bases 1..8 via trace minimum search) and 6 overlap and merge; 10 stays
	if ev.Len() != 2 {
		t.Fatalf("events = %d, want 2: %+v", ev.Len(), ev)
	}

	if ev.PeakTimes[0] != 3 || ev.PeakValues[0] != 5 {
		t.Fatalf("merged peak = %v@%v", ev.PeakValues[0], ev.PeakTimes[0])
	}

	if ev.PeakTimes[1] != 10 {
		t.Fatalf("second peak at %v", ev.PeakTimes[1])
	}

	short, err := ThreshEpochs(arr, AtLeast(2.5), Bounds{Min: 0, Max: 3}, 0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	if short.Len() != 1 || short.PeakTimes[0] != 10 {
		t.Fatalf("length filter: %+v", short)
	}

	if _, err := ThreshEpochs(arr, AtLeast(1), Unbounded, 0, 2, 1); !errors.Is(err, ErrBoundary) {
		t.Fatalf("expected ErrBoundary, got %v", err)
	}
}

func TestDetectPBE(t *testing.T) {
	const bin = 0.001

	n := 50000
	mua := &core.MUA{Time: make([]float64, n), Rate: testutil.DeterministicNoise(4, 0.5, n)}

	for i := range mua.Time {
		mua.Time[i] = float64(i) * bin
	}

	// two bursts: 200 ms and 1.5 s
	for i := 1000; i < 1200; i++ {
		mua.Rate[i] += 20
	}

	for i := 2500; i < 4000; i++ {
		mua.Rate[i] += 20
	}

	ep, err := DetectPBE(mua, DefaultPBEParams())
	if err != nil {
		t.Fatal(err)
	}

	if ep.Len() != 1 {
		t.Fatalf("events = %d, want 1\n%s", ep.Len(), ep)
	}

	if math.Abs(ep.At(0).Start-1.0) > 0.005 || math.Abs(ep.At(0).Stop-1.2) > 0.005 {
		t.Fatalf("event = %+v", ep.At(0))
	}

	if ep.Metadata()["max_dur"] != 1.0 {
		t.Fatalf("metadata = %v", ep.Metadata())
	}
}

func TestDetectLocalSleep(t *testing.T) {
	n := 1000
	mua := &core.MUA{Time: make([]float64, n), Rate: make([]float64, n)}

	for i := range mua.Time {
		mua.Time[i] = float64(i) * 0.01
		mua.Rate[i] = 10 + float64(i%10) + float64(i/10)*0.01
	}

	// a deep silence
	for i := 500; i < 520; i++ {
		mua.Rate[i] = 0
	}

	ep, err := DetectLocalSleep(mua, 0, 10)
	if err != nil {
		t.Fatal(err)
	}

	if ep.Len() == 0 || ep.Len() > 15 {
		t.Fatalf("expected the lowest decile of OFF periods, got %d", ep.Len())
	}

	found := false
	for _, r := range ep.Rows() {
		if r.Label != "off" {
			t.Fatalf("label = %q", r.Label)
		}

		if r.Start <= 5.001 && r.Stop >= 5.19 {
			found = true
		}
	}

	if !found {
		t.Fatalf("silence not detected:\n%s", ep)
	}
}
