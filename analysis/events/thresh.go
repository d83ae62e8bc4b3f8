package events

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrNoEvents is returned when no period crosses the thresholds.
	ErrNoEvents = errors.New("events: no events found")
	// ErrBoundary is returned when the peak threshold lies below the
	// zeroing boundary.
	ErrBoundary = errors.New("events: boundary must not exceed the minimum threshold")
)

// ContiguousRegions returns the half-open [start, stop) index ranges where
// cond is true.
func ContiguousRegions(cond []bool) [][2]int {
	var out [][2]int

	for i := 0; i < len(cond); {
		if !cond[i] {
			i++
			continue
		}

		j := i
		for j < len(cond) && cond[j] {
			j++
		}

		out = append(out, [2]int{i, j})
		i = j
	}

	return out
}

// ThreshParams configures ThreshPeriods. Durations and distances are in
// samples.
type ThreshParams struct {
	Low         float64
	High        float64
	MinDistance float64
	MinDuration float64
}

// DefaultThreshParams returns low 1, high 2, minimum distance 30 and
// minimum duration 50.
func DefaultThreshParams() ThreshParams {
	return ThreshParams{Low: 1, High: 2, MinDistance: 30, MinDuration: 50}
}

// ThreshPeriods finds periods where arr stays above p.Low. Periods cut off
// by the trace edges are dropped, periods closer than p.MinDistance are
// merged, periods shorter than p.MinDuration are dropped, and only periods
// whose maximum reaches p.High are kept. Each period is [start, stop] where
// start is the last sample at or below Low before the rise and stop the
// last sample above Low.
func ThreshPeriods(arr []float64, p ThreshParams) ([][2]int, error) {
	var starts, stops []int

	for i := 0; i+1 < len(arr); i++ {
		above, next := arr[i] > p.Low, arr[i+1] > p.Low

		switch {
		case !above && next:
			starts = append(starts, i)
		case above && !next:
			stops = append(stops, i)
		}
	}

	if len(starts) == 0 || len(stops) == 0 {
		return nil, ErrNoEvents
	}

	if starts[0] > stops[0] {
		stops = stops[1:]
	}

	if len(stops) > 0 && starts[len(starts)-1] > stops[len(stops)-1] {
		starts = starts[:len(starts)-1]
	}

	n := min(len(starts), len(stops))
	if n == 0 {
		return nil, ErrNoEvents
	}

	var merged [][2]int

	cur := [2]int{starts[0], stops[0]}
	for i := 1; i < n; i++ {
		if float64(starts[i]-cur[1]) < p.MinDistance {
			cur[1] = stops[i]
			continue
		}

		merged = append(merged, cur)
		cur = [2]int{starts[i], stops[i]}
	}

	merged = append(merged, cur)

	var out [][2]int

	for _, ev := range merged {
		if float64(ev[1]-ev[0]) < p.MinDuration {
			continue
		}

		if slices.Max(arr[ev[0]:max(ev[1], ev[0]+1)]) >= p.High {
			out = append(out, ev)
		}
	}

	return out, nil
}

// ThreshEvents are the epochs found by ThreshEpochs, in seconds.
type ThreshEvents struct {
	Starts     []float64
	Stops      []float64
	PeakTimes  []float64
	PeakValues []float64
}

// Len returns the number of events.
func (e ThreshEvents) Len() int { return len(e.Starts) }

// ThreshEpochs detects events as peaks of arr within thresh whose extents
// are their prominence bases. Values below boundary are zeroed first.
// Events closer than sep seconds are merged, keeping the higher peak, and
// events whose length in seconds falls outside length are dropped. A NaN
// length.Max means no upper limit.
func ThreshEpochs(arr []float64, thresh, length Bounds, sep, boundary, fs float64) (ThreshEvents, error) {
	if !math.IsNaN(thresh.Min) && thresh.Min < boundary {
		return ThreshEvents{}, fmt.Errorf("%w: %g < %g", ErrBoundary, thresh.Min, boundary)
	}

	clipped := make([]float64, len(arr))
	for i, v := range arr {
		if v >= boundary {
			clipped[i] = v
		}
	}

	pk := FindPeaks(clipped, WithHeight(thresh), WithProminence(AtLeast(0)))

	starts := slices.Clone(pk.LeftBases)
	stops := slices.Clone(pk.RightBases)
	peaks := slices.Clone(pk.Indices)
	values := slices.Clone(pk.Heights)

	sepSamples := sep*fs + 1e-6
	drop := make([]bool, len(starts))

	for i := 0; i+1 < len(starts); i++ {
		if float64(starts[i+1]-stops[i]) >= sepSamples {
			continue
		}

		starts[i+1] = min(starts[i], starts[i+1])
		stops[i+1] = max(stops[i], stops[i+1])

		if values[i] >= values[i+1] {
			peaks[i+1] = peaks[i]
		}

		values[i+1] = math.Max(values[i], values[i+1])
		drop[i] = true
	}

	lmin, lmax := length.Min*fs, length.Max*fs
	if math.IsNaN(lmin) {
		lmin = math.Inf(-1)
	}

	if math.IsNaN(lmax) {
		lmax = math.Inf(1)
	}

	var out ThreshEvents

	for i := range starts {
		if drop[i] {
			continue
		}

		l := float64(stops[i] - starts[i])
		if l < lmin || l > lmax {
			continue
		}

		out.Starts = append(out.Starts, float64(starts[i])/fs)
		out.Stops = append(out.Stops, float64(stops[i])/fs)
		out.PeakTimes = append(out.PeakTimes, float64(peaks[i])/fs)
		out.PeakValues = append(out.PeakValues, values[i])
	}

	return out, nil
}
