package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// IOOption configures persistence calls.
type IOOption func(*ioConfig)

type ioConfig struct {
	logger *zap.Logger
}

// WithLogger logs file activity to l.
func WithLogger(l *zap.Logger) IOOption {
	return func(c *ioConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyIO(opts []IOOption) ioConfig {
	cfg := ioConfig{logger: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}

// Metadata keys stamped by Save.
const (
	MetaRunID   = "run_id"
	MetaCreated = "created"
)

type epochFile struct {
	Epochs   []Interval           `json:"epochs"`
	Columns  map[string][]float64 `json:"columns,omitempty"`
	Order    []string             `json:"column_order,omitempty"`
	Metadata Metadata             `json:"metadata,omitempty"`
}

// Save writes e as JSON. The saved metadata gets a fresh run id and a
// creation timestamp.
func (e *Epoch) Save(path string, opts ...IOOption) error {
	cfg := applyIO(opts)

	md := e.Metadata()
	if md == nil {
		md = Metadata{}
	}

	md[MetaRunID] = uuid.NewString()
	md[MetaCreated] = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(epochFile{
		Epochs:   e.rows,
		Columns:  e.columns,
		Order:    e.order,
		Metadata: md,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode epochs: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write epochs: %w", err)
	}

	cfg.logger.Debug("saved epochs",
		zap.String("path", path),
		zap.Int("epochs", e.Len()),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
		zap.Any(MetaRunID, md[MetaRunID]))

	return nil
}

// LoadEpoch reads an epoch written by Save. A missing file yields ErrNoFile.
func LoadEpoch(path string, opts ...IOOption) (*Epoch, error) {
	cfg := applyIO(opts)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoFile, path)
	}

	if err != nil {
		return nil, fmt.Errorf("read epochs: %w", err)
	}

	var f epochFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode epochs %s: %w", path, err)
	}

	e := &Epoch{rows: f.Epochs, metadata: f.Metadata}
	for _, name := range f.Order {
		if len(f.Columns[name]) != len(f.Epochs) {
			return nil, fmt.Errorf("%w: column %q in %s", ErrLengthMismatch, name, path)
		}
	}

	if len(f.Order) > 0 {
		e.columns, e.order = f.Columns, f.Order
	}

	e = e.sorted()

	cfg.logger.Debug("loaded epochs", zap.String("path", path), zap.Int("epochs", e.Len()))

	return e, nil
}

const epochSheet = "epochs"

// WriteXLSX exports the epochs to a spreadsheet with start, stop,
// duration, label and the extra columns.
func (e *Epoch) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), epochSheet); err != nil {
		return err
	}

	headers := append([]string{"start", "stop", "duration", "label"}, e.order...)
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(epochSheet, cell, h); err != nil {
			return err
		}
	}

	for i, r := range e.rows {
		values := []any{r.Start, r.Stop, r.Duration(), r.Label}
		for _, name := range e.order {
			values = append(values, e.columns[name][i])
		}

		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			if err := f.SetCellValue(epochSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

// ReadXLSX reads epochs from the first sheet of a spreadsheet laid out
// like WriteXLSX output. The duration column is recomputed; other numeric
// columns are kept as extra columns.
func ReadXLSX(path string) (*Epoch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return FromRows(nil), nil
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[h] = i
	}

	for _, need := range []string{"start", "stop"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("%s: missing %q column", path, need)
		}
	}

	var extra []string

	for _, h := range rows[0] {
		switch h {
		case "start", "stop", "duration", "label":
		default:
			extra = append(extra, h)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}

		return row[i]
	}

	intervals := make([]Interval, 0, len(rows)-1)
	columns := make(map[string][]float64, len(extra))

	for n, row := range rows[1:] {
		start, err := strconv.ParseFloat(cell(row, "start"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: start: %w", path, n+2, err)
		}

		stop, err := strconv.ParseFloat(cell(row, "stop"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: stop: %w", path, n+2, err)
		}

		intervals = append(intervals, Interval{Start: start, Stop: stop, Label: cell(row, "label")})

		for _, name := range extra {
			v, err := strconv.ParseFloat(cell(row, name), 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %s: %w", path, n+2, name, err)
			}

			columns[name] = append(columns[name], v)
		}
	}

	e := &Epoch{rows: intervals}
	if len(extra) > 0 {
		e.columns, e.order = columns, extra
	}

	return e.sorted(), nil
}
