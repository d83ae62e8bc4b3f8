package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-ephys/stats/desc"
)

// FillMethod selects how FillBlank closes gaps between epochs.
type FillMethod int

const (
	// FromLeft stretches the earlier epoch up to the next start.
	FromLeft FillMethod = iota
	// FromRight stretches the later epoch back to the previous stop.
	FromRight
	// FromNearest splits each gap between its two neighbours.
	FromNearest
)

// String returns the method name as accepted by ParseFillMethod.
func (m FillMethod) String() string {
	switch m {
	case FromLeft:
		return "from_left"
	case FromRight:
		return "from_right"
	case FromNearest:
		return "from_nearest"
	default:
		return "unknown"
	}
}

// ParseFillMethod parses "from_left", "from_right" or "from_nearest".
func ParseFillMethod(s string) (FillMethod, error) {
	for _, m := range []FillMethod{FromLeft, FromRight, FromNearest} {
		if m.String() == s {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrFillMethod, s)
}

// FillBlank closes every gap between consecutive epochs. Extra columns are
// dropped.
func (e *Epoch) FillBlank(method FillMethod) (*Epoch, error) {
	rows := slices.Clone(e.rows)

	for i := 0; i+1 < len(rows); i++ {
		gap := rows[i+1].Start - rows[i].Stop
		if gap <= 0 {
			continue
		}

		switch method {
		case FromLeft:
			rows[i].Stop = rows[i+1].Start
		case FromRight:
			rows[i+1].Start -= gap
		case FromNearest:
			rows[i].Stop += gap / 2
			rows[i+1].Start -= gap / 2
		default:
			return nil, fmt.Errorf("%w: %d", ErrFillMethod, method)
		}
	}

	return FromRows(rows), nil
}

// DeleteInBetween removes the time range [t1, t2]. Epochs inside the range
// are dropped, epochs straddling one edge are truncated to it, and epochs
// spanning the whole range are split into two flanks.
func (e *Epoch) DeleteInBetween(t1, t2 float64) *Epoch {
	rows := make([]Interval, 0, len(e.rows))

	for _, r := range e.rows {
		switch {
		case r.Start >= t1 && r.Stop <= t2:
			continue
		case r.Start < t1 && r.Stop > t2:
			rows = append(rows,
				Interval{Start: r.Start, Stop: t1, Label: r.Label},
				Interval{Start: t2, Stop: r.Stop, Label: r.Label})
		case r.Start < t1 && r.Stop > t1:
			r.Stop = t1
			rows = append(rows, r)
		case r.Start >= t1 && r.Start <= t2 && r.Stop > t2:
			r.Start = t2
			rows = append(rows, r)
		default:
			rows = append(rows, r)
		}
	}

	return FromRows(rows)
}

// ProportionByLabel returns the fraction of [tStart, tStop] covered by each
// label. NaN bounds default to the first start and the last stop. Every
// label present in e gets an entry.
func (e *Epoch) ProportionByLabel(tStart, tStop float64) map[string]float64 {
	out := make(map[string]float64)
	for _, l := range e.UniqueLabels() {
		out[l] = 0
	}

	if len(e.rows) == 0 {
		return out
	}

	if math.IsNaN(tStart) {
		tStart = e.rows[0].Start
	}

	if math.IsNaN(tStop) {
		tStop = e.rows[len(e.rows)-1].Stop
	}

	var inside []Interval

	for _, r := range e.rows {
		if r.Stop > tStart && r.Start < tStop {
			inside = append(inside, r)
		}
	}

	if len(inside) == 0 {
		return out
	}

	inside[0].Start = math.Max(inside[0].Start, tStart)
	inside[len(inside)-1].Stop = math.Min(inside[len(inside)-1].Stop, tStop)

	total := tStop - tStart
	for _, r := range inside {
		out[r.Label] += r.Duration() / total
	}

	return out
}

// Count histograms epoch midpoints over bins of binsize seconds starting at
// tStart, with the last bin reaching past tStop. A NaN tStart means 0, a
// NaN tStop means the latest stop, and binsize <= 0 means 300 s.
func (e *Epoch) Count(tStart, tStop, binsize float64) ([]int, error) {
	if math.IsNaN(tStart) {
		tStart = 0
	}

	if math.IsNaN(tStop) {
		tStop = slices.Max(append(e.Stops(), tStart))
	}

	if binsize <= 0 {
		binsize = 300
	}

	mids := make([]float64, len(e.rows))
	for i, r := range e.rows {
		mids[i] = r.Start + r.Duration()/2
	}

	return desc.Histogram(mids, desc.ArangeEdges(tStart, tStop+binsize, binsize))
}

// Merge joins epochs separated by less than sep seconds. A merged epoch
// keeps the label of its first member. Extra columns are dropped.
func (e *Epoch) Merge(sep float64) *Epoch {
	if len(e.rows) == 0 {
		return FromRows(nil)
	}

	merged := []Interval{e.rows[0]}

	for _, r := range e.rows[1:] {
		cur := &merged[len(merged)-1]
		if r.Start-cur.Stop < sep {
			cur.Stop = math.Max(cur.Stop, r.Stop)
			continue
		}

		merged = append(merged, r)
	}

	return FromRows(merged)
}
