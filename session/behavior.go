package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/core"
)

// ErrPeriod is returned for malformed behavioral periods.
var ErrPeriod = errors.New("session: invalid behavior period")

// Standard period names.
const (
	PeriodPre  = "pre"
	PeriodMaze = "maze"
	PeriodPost = "post"
)

// BehaviorEpochs are the named periods of a session, stored next to the
// recording as <prefix>_epochs.json.
type BehaviorEpochs struct {
	path    string
	csvPath string
	epochs  *core.Epoch
	logger  *zap.Logger
}

// NewBehaviorEpochs binds to the files of prefix and loads the JSON file
// when it exists.
func NewBehaviorEpochs(prefix string, opts ...Option) (*BehaviorEpochs, error) {
	o := applyOptions(opts)

	b := &BehaviorEpochs{
		path:    prefix + "_epochs.json",
		csvPath: prefix + "_epochs.csv",
		epochs:  core.FromRows(nil),
		logger:  o.logger,
	}

	if err := b.Load(); err != nil && !errors.Is(err, core.ErrNoFile) {
		return nil, err
	}

	return b, nil
}

// Path returns the JSON file location.
func (b *BehaviorEpochs) Path() string { return b.path }

// Load reads the JSON file.
func (b *BehaviorEpochs) Load() error {
	e, err := core.LoadEpoch(b.path, core.WithLogger(b.logger))
	if err != nil {
		return err
	}

	b.epochs = e

	return nil
}

// Make merges periods into the stored set and saves it. Each entry maps a
// period name to exactly [start, stop] in seconds; an existing period of
// the same name is replaced.
func (b *BehaviorEpochs) Make(periods map[string][]float64) error {
	rows := make(map[string]core.Interval, b.epochs.Len()+len(periods))
	for _, iv := range b.epochs.Rows() {
		rows[iv.Label] = iv
	}

	for name, v := range periods {
		if len(v) != 2 {
			return fmt.Errorf("%w: %q needs [start, stop], got %d values", ErrPeriod, name, len(v))
		}

		if v[1] < v[0] {
			return fmt.Errorf("%w: %q stops before it starts", ErrPeriod, name)
		}

		rows[name] = core.Interval{Start: v[0], Stop: v[1], Label: name}
	}

	merged := make([]core.Interval, 0, len(rows))
	for _, iv := range rows {
		merged = append(merged, iv)
	}

	slices.SortFunc(merged, func(a, b core.Interval) int { return strings.Compare(a.Label, b.Label) })

	b.epochs = core.FromRows(merged)

	return b.save()
}

func (b *BehaviorEpochs) save() error {
	if err := b.epochs.Save(b.path, core.WithLogger(b.logger)); err != nil {
		return err
	}

	b.logger.Info("behavior epochs saved", zap.String("path", b.path), zap.Int("periods", b.epochs.Len()))

	return nil
}

// ImportCSV reads <prefix>_epochs.csv with header name,start,stop and
// merges its periods.
func (b *BehaviorEpochs) ImportCSV() error {
	f, err := os.Open(b.csvPath)
	if err != nil {
		return fmt.Errorf("open epochs csv: %w", err)
	}
	defer f.Close()

	periods, err := readPeriodsCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", b.csvPath, err)
	}

	return b.Make(periods)
}

func readPeriodsCSV(r io.Reader) (map[string][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty csv", ErrPeriod)
	}

	header := records[0]
	if len(header) != 3 || strings.ToLower(header[0]) != "name" ||
		strings.ToLower(header[1]) != "start" || strings.ToLower(header[2]) != "stop" {
		return nil, fmt.Errorf("%w: header must be name,start,stop, got %v", ErrPeriod, header)
	}

	out := make(map[string][]float64, len(records)-1)

	for line, rec := range records[1:] {
		start, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}

		stop, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}

		out[rec[0]] = []float64{start, stop}
	}

	return out, nil
}

// FromMazeBounds sets PRE = [0, start-1], MAZE = [start, stop] and
// POST = [stop+1, tEnd] and saves them.
func (b *BehaviorEpochs) FromMazeBounds(start, stop, tEnd float64) error {
	if !(start >= 1 && stop > start && tEnd >= stop+1) {
		return fmt.Errorf("%w: maze [%g, %g] in session of %g s", ErrPeriod, start, stop, tEnd)
	}

	return b.Make(map[string][]float64{
		PeriodPre:  {0, start - 1},
		PeriodMaze: {start, stop},
		PeriodPost: {stop + 1, tEnd},
	})
}

// Period returns the interval named name.
func (b *BehaviorEpochs) Period(name string) (core.Interval, bool) {
	for _, iv := range b.epochs.Rows() {
		if iv.Label == name {
			return iv, true
		}
	}

	return core.Interval{}, false
}

// TotalDuration sums the period durations.
func (b *BehaviorEpochs) TotalDuration() float64 {
	total := 0.0
	for _, d := range b.epochs.Durations() {
		total += d
	}

	return total
}

// Epoch returns the periods sorted by start.
func (b *BehaviorEpochs) Epoch() *core.Epoch { return b.epochs }
