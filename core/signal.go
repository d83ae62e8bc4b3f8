package core

import (
	"fmt"
	"math"
	"slices"
)

// Signal is a multichannel, regularly sampled trace. Traces are indexed
// [channel][frame].
type Signal struct {
	Traces       [][]float64
	SamplingRate float64
	TStart       float64
	ChannelIDs   []int
}

// SignalOption configures NewSignal.
type SignalOption func(*Signal)

// WithTStart sets the time of the first frame in seconds.
func WithTStart(t float64) SignalOption {
	return func(s *Signal) { s.TStart = t }
}

// WithChannelIDs names the channels. The default is 0..n-1.
func WithChannelIDs(ids []int) SignalOption {
	return func(s *Signal) { s.ChannelIDs = slices.Clone(ids) }
}

// NewSignal validates traces and wraps them in a Signal. The traces are not
// copied.
func NewSignal(traces [][]float64, fs float64, opts ...SignalOption) (*Signal, error) {
	if len(traces) == 0 || len(traces[0]) == 0 {
		return nil, ErrEmptySignal
	}

	if fs <= 0 || math.IsNaN(fs) {
		return nil, fmt.Errorf("%w: %v", ErrSampleRate, fs)
	}

	for i, tr := range traces {
		if len(tr) != len(traces[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrRaggedTraces, i, len(tr), len(traces[0]))
		}
	}

	s := &Signal{Traces: traces, SamplingRate: fs}
	for _, o := range opts {
		o(s)
	}

	if s.ChannelIDs == nil {
		s.ChannelIDs = make([]int, len(traces))
		for i := range s.ChannelIDs {
			s.ChannelIDs[i] = i
		}
	}

	if len(s.ChannelIDs) != len(traces) {
		return nil, fmt.Errorf("%w: %d channel ids for %d traces", ErrLengthMismatch, len(s.ChannelIDs), len(traces))
	}

	return s, nil
}

// NChannels returns the number of channels.
func (s *Signal) NChannels() int { return len(s.Traces) }

// NFrames returns the number of samples per channel.
func (s *Signal) NFrames() int {
	if len(s.Traces) == 0 {
		return 0
	}

	return len(s.Traces[0])
}

// Duration returns the recording length in seconds.
func (s *Signal) Duration() float64 {
	return float64(s.NFrames()) / s.SamplingRate
}

// TStop returns the time just past the last frame.
func (s *Signal) TStop() float64 {
	return s.TStart + s.Duration()
}

// Time returns the timestamp of every frame.
func (s *Signal) Time() []float64 {
	t := make([]float64, s.NFrames())
	for i := range t {
		t[i] = s.TStart + float64(i)/s.SamplingRate
	}

	return t
}

// TimeSlice returns the frames with t1 <= t < t2 as a new signal sharing
// the underlying arrays.
func (s *Signal) TimeSlice(t1, t2 float64) (*Signal, error) {
	i1 := max(0, frameIndex(t1, s.TStart, s.SamplingRate))
	i2 := min(s.NFrames(), frameIndex(t2, s.TStart, s.SamplingRate))

	if i2 <= i1 {
		return nil, fmt.Errorf("%w: no frames in [%g, %g)", ErrEmptySignal, t1, t2)
	}

	traces := make([][]float64, len(s.Traces))
	for c, tr := range s.Traces {
		traces[c] = tr[i1:i2]
	}

	return &Signal{
		Traces:       traces,
		SamplingRate: s.SamplingRate,
		TStart:       s.TStart + float64(i1)/s.SamplingRate,
		ChannelIDs:   slices.Clone(s.ChannelIDs),
	}, nil
}

// ChannelSlice returns the given channels, in the order requested.
func (s *Signal) ChannelSlice(ids []int) (*Signal, error) {
	traces := make([][]float64, len(ids))

	for k, id := range ids {
		tr, err := s.Trace(id)
		if err != nil {
			return nil, err
		}

		traces[k] = tr
	}

	return NewSignal(traces, s.SamplingRate, WithTStart(s.TStart), WithChannelIDs(ids))
}

// Trace returns the samples of the channel with the given id.
func (s *Signal) Trace(id int) ([]float64, error) {
	i := slices.Index(s.ChannelIDs, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrChannelNotFound, id)
	}

	return s.Traces[i], nil
}
