// Package trace summarizes LFP traces in the time domain: amplitude
// extremes, RMS, zero crossings and the first four moments.
package trace

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-ephys/core"
)

// Summary holds time-domain statistics of one trace.
type Summary struct {
	Length   int
	Duration float64 // seconds, 0 when the sampling rate is unknown
	Mean     float64
	RMS      float64
	Max      float64
	MaxPos   int
	Min      float64
	MinPos   int
	// Peak is max(|Max|, |Min|).
	Peak          float64
	Range         float64
	ZeroCrossings int
	Variance      float64
	Skewness      float64
	// Kurtosis is the excess kurtosis.
	Kurtosis float64
}

// Accumulator builds a Summary block by block, so long recordings can be
// summarized while they are read. Feeding the same samples in any block
// split gives the same result as Calculate.
type Accumulator struct {
	n          int
	mean       float64
	m2, m3, m4 float64
	sumSq      float64
	maxVal     float64
	maxPos     int
	minVal     float64
	minPos     int
	crossings  int
	last       float64
}

// Add folds samples into the running statistics.
func (a *Accumulator) Add(samples []float64) {
	for _, x := range samples {
		a.n++
		ni := float64(a.n)

		// Welford, highest moment first.
		delta := x - a.mean
		dn := delta / ni
		dn2 := dn * dn
		term := delta * dn * float64(a.n-1)

		a.m4 += term*dn2*(ni*ni-3*ni+3) + 6*dn2*a.m2 - 4*dn*a.m3
		a.m3 += term*dn*(ni-2) - 3*dn*a.m2
		a.m2 += term
		a.mean += dn

		a.sumSq += x * x

		if a.n == 1 || x > a.maxVal {
			a.maxVal, a.maxPos = x, a.n-1
		}

		if a.n == 1 || x < a.minVal {
			a.minVal, a.minPos = x, a.n-1
		}

		if a.n > 1 && a.last*x < 0 {
			a.crossings++
		}

		a.last = x
	}
}

// Len returns the number of samples seen.
func (a *Accumulator) Len() int { return a.n }

// Summary returns the statistics so far. fs converts the length to a
// duration; pass 0 to leave Duration unset.
func (a *Accumulator) Summary(fs float64) Summary {
	if a.n == 0 {
		return Summary{}
	}

	nf := float64(a.n)

	s := Summary{
		Length:        a.n,
		Mean:          a.mean,
		RMS:           math.Sqrt(a.sumSq / nf),
		Max:           a.maxVal,
		MaxPos:        a.maxPos,
		Min:           a.minVal,
		MinPos:        a.minPos,
		Peak:          math.Max(math.Abs(a.maxVal), math.Abs(a.minVal)),
		Range:         a.maxVal - a.minVal,
		ZeroCrossings: a.crossings,
		Variance:      a.m2 / nf,
	}

	if fs > 0 {
		s.Duration = nf / fs
	}

	if s.Variance > 0 {
		s.Skewness = (a.m3 / nf) / (s.Variance * math.Sqrt(s.Variance))
		s.Kurtosis = (a.m4/nf)/(s.Variance*s.Variance) - 3
	}

	return s
}

// Calculate summarizes x in one pass.
func Calculate(x []float64, fs float64) Summary {
	var a Accumulator
	a.Add(x)

	return a.Summary(fs)
}

// ChannelSummary pairs a channel id with its Summary.
type ChannelSummary struct {
	Channel int
	Summary
}

// CalculateSignal summarizes every channel of sig.
func CalculateSignal(sig *core.Signal) []ChannelSummary {
	out := make([]ChannelSummary, sig.NChannels())
	for i, tr := range sig.Traces {
		out[i] = ChannelSummary{Channel: sig.ChannelIDs[i], Summary: Calculate(tr, sig.SamplingRate)}
	}

	return out
}

// String formats the headline numbers of s.
func (s Summary) String() string {
	return fmt.Sprintf("n=%d dur=%.3fs mean=%.4g rms=%.4g range=[%.4g, %.4g] zc=%d",
		s.Length, s.Duration, s.Mean, s.RMS, s.Min, s.Max, s.ZeroCrossings)
}
