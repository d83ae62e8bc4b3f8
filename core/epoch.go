package core

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
)

// Metadata carries free-form parameters alongside a persisted object.
type Metadata map[string]any

// Interval is one row of an Epoch.
type Interval struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Label string  `json:"label"`
}

// Duration returns Stop - Start.
func (iv Interval) Duration() float64 { return iv.Stop - iv.Start }

// Epoch is an ordered table of intervals plus optional numeric columns.
// Rows are kept sorted by start; ties keep their insertion order.
type Epoch struct {
	rows     []Interval
	columns  map[string][]float64
	order    []string
	metadata Metadata
}

// NewEpoch builds an epoch from parallel start, stop and label slices.
// labels may be nil.
func NewEpoch(starts, stops []float64, labels []string) (*Epoch, error) {
	if len(starts) != len(stops) {
		return nil, fmt.Errorf("%w: %d starts, %d stops", ErrLengthMismatch, len(starts), len(stops))
	}

	if labels != nil && len(labels) != len(starts) {
		return nil, fmt.Errorf("%w: %d labels for %d epochs", ErrLengthMismatch, len(labels), len(starts))
	}

	rows := make([]Interval, len(starts))
	for i := range rows {
		rows[i] = Interval{Start: starts[i], Stop: stops[i]}
		if labels != nil {
			rows[i].Label = labels[i]
		}
	}

	return FromRows(rows), nil
}

// FromRows builds an epoch from intervals.
func FromRows(rows []Interval) *Epoch {
	e := &Epoch{rows: slices.Clone(rows)}
	e.sort()

	return e
}

// FromStringArray converts runs of identical labels into epochs. Run
// boundaries are sample indices scaled by dt, or looked up in t when t is
// not nil. A run reaching the end of arr stops at the last sample.
func FromStringArray(arr []string, dt float64, t []float64) (*Epoch, error) {
	if t != nil && len(t) != len(arr) {
		return nil, fmt.Errorf("%w: time has %d samples, array %d", ErrLengthMismatch, len(t), len(arr))
	}

	toTime := func(i int) float64 {
		if t != nil {
			return t[i]
		}

		return float64(i) * dt
	}

	var rows []Interval

	for i := 0; i < len(arr); {
		j := i + 1
		for j < len(arr) && arr[j] == arr[i] {
			j++
		}

		stop := min(j, len(arr)-1)
		rows = append(rows, Interval{Start: toTime(i), Stop: toTime(stop), Label: arr[i]})
		i = j
	}

	return FromRows(rows), nil
}

// FromLogicalArray converts runs of true values into unlabelled epochs,
// with the same index mapping as FromStringArray.
func FromLogicalArray(mask []bool, dt float64, t []float64) (*Epoch, error) {
	labels := make([]string, len(mask))
	for i, m := range mask {
		if m {
			labels[i] = "1"
		}
	}

	e, err := FromStringArray(labels, dt, t)
	if err != nil {
		return nil, err
	}

	out := e.Mask(e.labelMask("1"))
	for i := range out.rows {
		out.rows[i].Label = ""
	}

	return out, nil
}

func (e *Epoch) sort() {
	sort.SliceStable(e.rows, func(i, j int) bool { return e.rows[i].Start < e.rows[j].Start })
}

func (e *Epoch) clone() *Epoch {
	out := &Epoch{
		rows:     slices.Clone(e.rows),
		order:    slices.Clone(e.order),
		metadata: maps.Clone(e.metadata),
	}

	if e.columns != nil {
		out.columns = make(map[string][]float64, len(e.columns))
		for k, v := range e.columns {
			out.columns[k] = slices.Clone(v)
		}
	}

	return out
}

// Len returns the number of epochs.
func (e *Epoch) Len() int { return len(e.rows) }

// Rows returns a copy of the intervals.
func (e *Epoch) Rows() []Interval { return slices.Clone(e.rows) }

// Starts returns the start times.
func (e *Epoch) Starts() []float64 {
	out := make([]float64, len(e.rows))
	for i, r := range e.rows {
		out[i] = r.Start
	}

	return out
}

// Stops returns the stop times.
func (e *Epoch) Stops() []float64 {
	out := make([]float64, len(e.rows))
	for i, r := range e.rows {
		out[i] = r.Stop
	}

	return out
}

// Durations returns stop - start for every epoch.
func (e *Epoch) Durations() []float64 {
	out := make([]float64, len(e.rows))
	for i, r := range e.rows {
		out[i] = r.Duration()
	}

	return out
}

// Labels returns the labels.
func (e *Epoch) Labels() []string {
	out := make([]string, len(e.rows))
	for i, r := range e.rows {
		out[i] = r.Label
	}

	return out
}

// HasLabels reports whether every epoch carries a non-empty label.
func (e *Epoch) HasLabels() bool {
	for _, r := range e.rows {
		if r.Label == "" {
			return false
		}
	}

	return true
}

// UniqueLabels returns the distinct labels in sorted order.
func (e *Epoch) UniqueLabels() []string {
	labels := e.Labels()
	slices.Sort(labels)

	return slices.Compact(labels)
}

// IsLabelsUnique reports whether no label repeats.
func (e *Epoch) IsLabelsUnique() bool {
	return len(e.UniqueLabels()) == len(e.rows)
}

// Columns returns the names of the extra columns in insertion order.
func (e *Epoch) Columns() []string { return slices.Clone(e.order) }

// Column returns a copy of the named extra column.
func (e *Epoch) Column(name string) ([]float64, bool) {
	v, ok := e.columns[name]
	return slices.Clone(v), ok
}

// Metadata returns a copy of the epoch metadata.
func (e *Epoch) Metadata() Metadata { return maps.Clone(e.metadata) }

// WithMetadata returns a copy of e carrying md.
func (e *Epoch) WithMetadata(md Metadata) *Epoch {
	out := e.clone()
	out.metadata = maps.Clone(md)

	return out
}

// SetLabels returns a copy of e with new labels.
func (e *Epoch) SetLabels(labels []string) (*Epoch, error) {
	if len(labels) != len(e.rows) {
		return nil, fmt.Errorf("%w: %d labels for %d epochs", ErrLengthMismatch, len(labels), len(e.rows))
	}

	out := e.clone()
	for i := range out.rows {
		out.rows[i].Label = labels[i]
	}

	return out, nil
}

// AddColumn returns a copy of e with an extra numeric column.
func (e *Epoch) AddColumn(name string, values []float64) (*Epoch, error) {
	if len(values) != len(e.rows) {
		return nil, fmt.Errorf("%w: column %q has %d values for %d epochs", ErrLengthMismatch, name, len(values), len(e.rows))
	}

	out := e.clone()
	if out.columns == nil {
		out.columns = make(map[string][]float64)
	}

	if _, ok := out.columns[name]; !ok {
		out.order = append(out.order, name)
	}

	out.columns[name] = slices.Clone(values)

	return out, nil
}

// Add concatenates two epochs. Extra columns and metadata are dropped.
func (e *Epoch) Add(other *Epoch) *Epoch {
	return FromRows(append(slices.Clone(e.rows), other.rows...))
}

// Shift moves every epoch by dt seconds, keeping columns and metadata.
func (e *Epoch) Shift(dt float64) *Epoch {
	out := e.clone()
	for i := range out.rows {
		out.rows[i].Start += dt
		out.rows[i].Stop += dt
	}

	return out
}

// At returns the i-th interval.
func (e *Epoch) At(i int) Interval { return e.rows[i] }

// Select returns the epochs at the given indices, in that order.
func (e *Epoch) Select(indices []int) *Epoch {
	out := &Epoch{rows: make([]Interval, len(indices)), order: slices.Clone(e.order)}
	for k, i := range indices {
		out.rows[k] = e.rows[i]
	}

	if len(e.columns) > 0 {
		out.columns = make(map[string][]float64, len(e.columns))
		for name, col := range e.columns {
			v := make([]float64, len(indices))
			for k, i := range indices {
				v[k] = col[i]
			}

			out.columns[name] = v
		}
	}

	return out
}

// Mask returns the epochs whose mask entry is true. mask must match Len.
func (e *Epoch) Mask(mask []bool) *Epoch {
	var idx []int

	for i, m := range mask {
		if m {
			idx = append(idx, i)
		}
	}

	return e.Select(idx)
}

func (e *Epoch) labelMask(label string) []bool {
	mask := make([]bool, len(e.rows))
	for i, r := range e.rows {
		mask[i] = r.Label == label
	}

	return mask
}

// ByLabel returns the epochs carrying label.
func (e *Epoch) ByLabel(label string) *Epoch {
	return e.Mask(e.labelMask(label))
}

// LabelSlice is ByLabel.
func (e *Epoch) LabelSlice(label string) *Epoch { return e.ByLabel(label) }

// TimeSlice returns the epochs whose start lies strictly inside (t1, t2).
func (e *Epoch) TimeSlice(t1, t2 float64) *Epoch {
	mask := make([]bool, len(e.rows))
	for i, r := range e.rows {
		mask[i] = r.Start > t1 && r.Start < t2
	}

	return e.Mask(mask)
}

// DurationSlice returns the epochs with minDur <= duration <= maxDur. A NaN
// bound is not applied.
func (e *Epoch) DurationSlice(minDur, maxDur float64) *Epoch {
	mask := make([]bool, len(e.rows))
	for i, r := range e.rows {
		d := r.Duration()
		mask[i] = (math.IsNaN(minDur) || d >= minDur) && (math.IsNaN(maxDur) || d <= maxDur)
	}

	return e.Mask(mask)
}

// IsOverlapping reports whether any epoch ends after the next one starts.
func (e *Epoch) IsOverlapping() bool {
	for i := 1; i < len(e.rows); i++ {
		if e.rows[i-1].Stop > e.rows[i].Start {
			return true
		}
	}

	return false
}

// AsArray returns [start, stop] pairs.
func (e *Epoch) AsArray() [][2]float64 {
	out := make([][2]float64, len(e.rows))
	for i, r := range e.rows {
		out[i] = [2]float64{r.Start, r.Stop}
	}

	return out
}

// Flatten returns start0, stop0, start1, stop1, ... . The result is
// monotonic only for non-overlapping epochs.
func (e *Epoch) Flatten() []float64 {
	out := make([]float64, 0, 2*len(e.rows))
	for _, r := range e.rows {
		out = append(out, r.Start, r.Stop)
	}

	return out
}

func (e *Epoch) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d epochs\n", len(e.rows))
	fmt.Fprintf(&b, "%10s %10s %10s  %s\n", "start", "stop", "duration", "label")

	for _, r := range e.rows[:min(5, len(e.rows))] {
		fmt.Fprintf(&b, "%10.3f %10.3f %10.3f  %s\n", r.Start, r.Stop, r.Duration(), r.Label)
	}

	return b.String()
}

// sorted returns e itself when rows are already ordered by start, or a
// reordered copy with columns and metadata carried along.
func (e *Epoch) sorted() *Epoch {
	if sort.SliceIsSorted(e.rows, func(i, j int) bool { return e.rows[i].Start < e.rows[j].Start }) {
		return e
	}

	idx := make([]int, len(e.rows))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool { return e.rows[idx[i]].Start < e.rows[idx[j]].Start })

	out := e.Select(idx)
	out.metadata = e.metadata

	return out
}
