package events

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

// PBEParams configures DetectPBE. Thresholds are in z-scored rate units,
// durations in seconds.
type PBEParams struct {
	Thresh   [2]float64
	MinDur   float64
	MergeDur float64
	MaxDur   float64
}

// DefaultPBEParams returns thresholds (0, 3), minimum duration 0.1 s, merge
// distance 0.01 s and maximum duration 1 s.
func DefaultPBEParams() PBEParams {
	return PBEParams{Thresh: [2]float64{0, 3}, MinDur: 0.1, MergeDur: 0.01, MaxDur: 1}
}

// DetectPBE finds population burst events: periods where the z-scored
// population rate rises above Thresh[0] and peaks at or above Thresh[1].
// Events lasting MaxDur or longer are dropped. The parameters are stored
// in the epoch metadata.
func DetectPBE(mua *core.MUA, p PBEParams) (*core.Epoch, error) {
	bin := mua.BinSize()
	if bin <= 0 || mua.Len() < 2 {
		return nil, fmt.Errorf("events: population rate needs at least two bins")
	}

	periods, err := ThreshPeriods(desc.ZScore(mua.Rate), ThreshParams{
		Low:         p.Thresh[0],
		High:        p.Thresh[1],
		MinDistance: p.MergeDur / bin,
		MinDuration: p.MinDur / bin,
	})
	if err != nil {
		return nil, err
	}

	var starts, stops []float64

	for _, ev := range periods {
		t0, t1 := mua.Time[ev[0]], mua.Time[ev[1]]
		if t1-t0 < p.MaxDur {
			starts = append(starts, t0)
			stops = append(stops, t1)
		}
	}

	e, err := core.NewEpoch(starts, stops, nil)
	if err != nil {
		return nil, err
	}

	return e.WithMetadata(core.Metadata{
		"thresh":    p.Thresh[:],
		"min_dur":   p.MinDur,
		"merge_dur": p.MergeDur,
		"max_dur":   p.MaxDur,
	}), nil
}

// DetectLocalSleep finds OFF periods inside (t1, t2): stretches where the
// population rate stays below its median, from the first to the last
// sample below it. Only the lowest decile of
// periods, ranked by their minimum rate, is kept. Epochs are labelled
// "off".
func DetectLocalSleep(mua *core.MUA, t1, t2 float64) (*core.Epoch, error) {
	if t2 <= t1 {
		return nil, fmt.Errorf("events: invalid period [%g, %g]", t1, t2)
	}

	var (
		tm   []float64
		rate []float64
	)

	for i, t := range mua.Time {
		if t > t1 && t < t2 {
			tm = append(tm, t)
			rate = append(rate, mua.Rate[i])
		}
	}

	med := desc.Median(rate)

	below := make([]float64, len(rate))
	for i, r := range rate {
		if r < med {
			below[i] = 1
		}
	}

	periods, err := ThreshPeriods(below, ThreshParams{Low: 0.5, High: 0})
	if err != nil {
		return nil, err
	}

	minRate := make([]float64, len(periods))
	for k, ev := range periods {
		minRate[k] = slices.Min(rate[ev[0]+1 : ev[1]+1])
	}

	cut := desc.Quantile(minRate, 0.1)

	var starts, stops []float64

	for k, ev := range periods {
		if minRate[k] <= cut {
			starts = append(starts, tm[ev[0]+1])
			stops = append(stops, tm[ev[1]])
		}
	}

	labels := make([]string, len(starts))
	for i := range labels {
		labels[i] = "off"
	}

	e, err := core.NewEpoch(starts, stops, labels)
	if err != nil {
		return nil, err
	}

	return e.WithMetadata(core.Metadata{"period": []float64{t1, t2}}), nil
}
