package core

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Spectrogram is a time-frequency power map. Traces are indexed
// [freq][time]; SamplingRate is the rate of the time axis.
type Spectrogram struct {
	Traces       [][]float64
	Freqs        []float64
	SamplingRate float64
	TStart       float64
}

// NTimes returns the number of time bins.
func (sg *Spectrogram) NTimes() int {
	if len(sg.Traces) == 0 {
		return 0
	}

	return len(sg.Traces[0])
}

// Time returns the centre of every time bin.
func (sg *Spectrogram) Time() []float64 {
	t := make([]float64, sg.NTimes())
	for i := range t {
		t[i] = sg.TStart + float64(i)/sg.SamplingRate
	}

	return t
}

// FreqSlice keeps the rows with lo <= f <= hi.
func (sg *Spectrogram) FreqSlice(lo, hi float64) *Spectrogram {
	out := &Spectrogram{SamplingRate: sg.SamplingRate, TStart: sg.TStart}

	for i, f := range sg.Freqs {
		if f >= lo && f <= hi {
			out.Freqs = append(out.Freqs, f)
			out.Traces = append(out.Traces, sg.Traces[i])
		}
	}

	return out
}

// TimeSlice keeps the columns with t1 <= t < t2.
func (sg *Spectrogram) TimeSlice(t1, t2 float64) (*Spectrogram, error) {
	i1 := max(0, frameIndex(t1, sg.TStart, sg.SamplingRate))
	i2 := min(sg.NTimes(), frameIndex(t2, sg.TStart, sg.SamplingRate))

	if i2 <= i1 {
		return nil, fmt.Errorf("%w: no columns in [%g, %g)", ErrEmptySignal, t1, t2)
	}

	rows := make([][]float64, len(sg.Traces))
	for f, r := range sg.Traces {
		rows[f] = r[i1:i2]
	}

	return &Spectrogram{
		Traces:       rows,
		Freqs:        sg.Freqs,
		SamplingRate: sg.SamplingRate,
		TStart:       sg.TStart + float64(i1)/sg.SamplingRate,
	}, nil
}

// MeanPower averages the rows with lo <= f <= hi, giving one value per
// time bin.
func (sg *Spectrogram) MeanPower(lo, hi float64) ([]float64, error) {
	band := sg.FreqSlice(lo, hi)
	if len(band.Traces) == 0 {
		return nil, fmt.Errorf("%w: no frequencies in [%g, %g]", ErrEmptySignal, lo, hi)
	}

	out := make([]float64, sg.NTimes())
	for _, row := range band.Traces {
		vecmath.AddBlockInPlace(out, row)
	}

	vecmath.ScaleBlockInPlace(out, 1/float64(len(band.Traces)))

	return out, nil
}

// MUA is a binned population firing rate.
type MUA struct {
	Time []float64
	Rate []float64
}

// Len returns the number of rate bins.
func (m *MUA) Len() int { return len(m.Rate) }

// BinSize returns the spacing of the time axis in seconds.
func (m *MUA) BinSize() float64 {
	if len(m.Time) < 2 {
		return 0
	}

	return m.Time[1] - m.Time[0]
}
