package session

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ishiikurisu/edf"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/core"
)

const edfAnnotationLabel = "EDF Annotations"

// EDFRecording is an EDF file loaded as a signal plus its annotations.
type EDFRecording struct {
	Signal *core.Signal
	Labels []string
	// Notes are the EDF+ annotations as labelled intervals; nil when the
	// file has none.
	Notes *core.Epoch
}

// LoadEDF reads an EDF file. When labels are given only those signals are
// kept, in the given order. All kept signals must share one sampling
// rate.
func LoadEDF(path string, labels []string, opts ...Option) (*EDFRecording, error) {
	o := applyOptions(opts)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open edf: %w", err)
	}

	data := edf.ReadFile(path)
	all := data.GetLabels()

	trimmed := make([]string, len(all))
	for i, l := range all {
		trimmed[i] = strings.TrimSpace(l)
	}

	var pick []int

	if len(labels) == 0 {
		for i, l := range trimmed {
			if l != edfAnnotationLabel && i < len(data.PhysicalRecords) {
				pick = append(pick, i)
			}
		}
	} else {
		for _, want := range labels {
			i := slices.Index(trimmed, want)
			if i < 0 || i >= len(data.PhysicalRecords) {
				return nil, fmt.Errorf("%w: %q", core.ErrChannelNotFound, want)
			}

			pick = append(pick, i)
		}
	}

	if len(pick) == 0 {
		return nil, fmt.Errorf("%w: %s has no signals", core.ErrEmptySignal, path)
	}

	duration := data.GetDuration()
	if duration <= 0 {
		return nil, fmt.Errorf("%w: record duration %g", core.ErrSampleRate, duration)
	}

	fs := float64(data.GetSampling()) / duration

	traces := make([][]float64, len(pick))
	names := make([]string, len(pick))

	for k, i := range pick {
		traces[k] = slices.Clone(data.PhysicalRecords[i])
		names[k] = trimmed[i]
	}

	sig, err := core.NewSignal(traces, fs)
	if err != nil {
		return nil, fmt.Errorf("edf %s: %w", path, err)
	}

	rec := &EDFRecording{Signal: sig, Labels: names}

	if notes := data.WriteNotes(); notes != "" {
		rec.Notes = ParseEDFNotes(notes)
	}

	o.logger.Debug("edf loaded",
		zap.String("path", path),
		zap.Strings("labels", names),
		zap.Float64("fs", fs),
		zap.String("frames", humanize.Comma(int64(sig.NFrames()))))

	return rec, nil
}

var edfNoteRE = regexp.MustCompile(`^\+([\d.]+)\s([\d.]+)\s(.+?)\s*$`)

// ParseEDFNotes turns annotation lines "+onset duration text" into
// intervals [onset, onset+duration] labelled text. Other lines are
// skipped.
func ParseEDFNotes(text string) *core.Epoch {
	var rows []core.Interval

	for _, line := range strings.Split(text, "\n") {
		m := edfNoteRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		onset, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}

		dur, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}

		rows = append(rows, core.Interval{Start: onset, Stop: onset + dur, Label: m[3]})
	}

	return core.FromRows(rows)
}
