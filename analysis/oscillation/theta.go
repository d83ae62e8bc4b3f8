package oscillation

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ephys/analysis/events"
	"github.com/cwbudde/algo-ephys/dsp/filter/zerophase"
	"github.com/cwbudde/algo-ephys/dsp/hilbert"
)

// ThetaMethod selects how ThetaParams assigns phase to the theta cycle.
type ThetaMethod int

const (
	// ThetaHilbert uses the analytic signal of the 1-25 Hz band.
	ThetaHilbert ThetaMethod = iota
	// ThetaWaveshape interpolates phase between detected peaks and troughs
	// of the 1-60 Hz band, preserving cycle asymmetry.
	ThetaWaveshape
)

// String returns the method name.
func (m ThetaMethod) String() string {
	switch m {
	case ThetaHilbert:
		return "hilbert"
	case ThetaWaveshape:
		return "waveshape"
	default:
		return fmt.Sprintf("ThetaMethod(%d)", int(m))
	}
}

// ParseThetaMethod maps "hilbert" or "waveshape" to a ThetaMethod.
func ParseThetaMethod(s string) (ThetaMethod, error) {
	switch s {
	case "hilbert":
		return ThetaHilbert, nil
	case "waveshape":
		return ThetaWaveshape, nil
	default:
		return 0, fmt.Errorf("oscillation: unknown theta method %q", s)
	}
}

// ErrThetaAlignment is returned when peaks and troughs cannot be paired.
var ErrThetaAlignment = errors.New("oscillation: theta peaks and troughs do not align")

// Theta holds the cycle-by-cycle description of a theta trace.
type Theta struct {
	Fs float64
	// Filtered is the band-passed trace.
	Filtered []float64
	// Amp is the instantaneous power |h|^2 of the filtered trace.
	Amp []float64
	// Angle is the phase in degrees, 0/360 at the trough and 180 at the peak.
	Angle []float64
	// Trough and Peak are sample indices, paired so Trough[i] < Peak[i].
	Trough []int
	Peak   []int
	// RiseTime is trough-to-peak and FallTime peak-to-trough, in seconds.
	RiseTime []float64
	FallTime []float64
}

// ThetaParams band-passes lfp and extracts theta peaks, troughs, phase and
// cycle timing.
func ThetaParams(lfp []float64, fs float64, method ThetaMethod) (*Theta, error) {
	var (
		th  *Theta
		err error
	)

	switch method {
	case ThetaHilbert:
		th, err = thetaHilbert(lfp, fs)
	case ThetaWaveshape:
		th, err = thetaWaveshape(lfp, fs)
	default:
		return nil, fmt.Errorf("oscillation: unknown theta method %d", int(method))
	}

	if err != nil {
		return nil, err
	}

	if len(th.Peak) > 0 && len(th.Trough) > 0 && th.Peak[0] < th.Trough[0] {
		th.Peak = th.Peak[1:]
	}

	if len(th.Peak) > 0 && len(th.Trough) > 0 && th.Trough[len(th.Trough)-1] > th.Peak[len(th.Peak)-1] {
		th.Trough = th.Trough[:len(th.Trough)-1]
	}

	if len(th.Peak) != len(th.Trough) || len(th.Peak) < 2 {
		return nil, fmt.Errorf("%w: %d peaks, %d troughs", ErrThetaAlignment, len(th.Peak), len(th.Trough))
	}

	n := len(th.Peak)
	th.RiseTime = make([]float64, n-1)
	th.FallTime = make([]float64, n-1)

	for i := 1; i < n; i++ {
		th.RiseTime[i-1] = float64(th.Peak[i]-th.Trough[i]) / fs
		th.FallTime[i-1] = float64(th.Trough[i]-th.Peak[i-1]) / fs
	}

	return th, nil
}

func thetaHilbert(lfp []float64, fs float64) (*Theta, error) {
	filt, err := zerophase.Bandpass(lfp, 1, 25, fs, 3)
	if err != nil {
		return nil, err
	}

	h, err := hilbert.Fast(filt)
	if err != nil {
		return nil, err
	}

	phase := hilbert.PhaseDegrees(h)
	absPhase := make([]float64, len(phase))
	negAbs := make([]float64, len(phase))

	for i, p := range phase {
		absPhase[i] = math.Abs(p)
		negAbs[i] = -absPhase[i]
	}

	return &Theta{
		Fs:       fs,
		Filtered: filt,
		Amp:      hilbert.Power(h),
		Angle:    hilbert.Phase360(h),
		Trough:   events.FindPeaks(absPhase).Indices,
		Peak:     events.FindPeaks(negAbs).Indices,
	}, nil
}

func thetaWaveshape(lfp []float64, fs float64) (*Theta, error) {
	filt, err := zerophase.Bandpass(lfp, 1, 60, fs, 3)
	if err != nil {
		return nil, err
	}

	peaks := events.FindPeaks(filt,
		events.WithHeight(events.AtLeast(0)),
		events.WithDistance(math.Floor(0.08*fs)),
	).Indices

	h, err := hilbert.Fast(filt)
	if err != nil {
		return nil, err
	}

	troughs := make([]int, 0, len(peaks))
	for i := 1; i < len(peaks); i++ {
		troughs = append(troughs, peaks[i-1]+argmin(filt[peaks[i-1]:peaks[i]]))
	}

	return &Theta{
		Fs:       fs,
		Filtered: filt,
		Amp:      hilbert.Power(h),
		Angle:    waveshapeAngle(len(filt), troughs, peaks),
		Trough:   troughs,
		Peak:     peaks,
	}, nil
}

// waveshapeAngle places troughs at 0 and peaks at 180 degrees, linearly
// interpolating between them. Samples between a peak and the next trough
// are mirrored to 360-angle so the phase runs 0..360 over a full cycle.
func waveshapeAngle(n int, troughs, peaks []int) []float64 {
	type anchor struct {
		idx int
		deg float64
	}

	anchors := make([]anchor, 0, len(troughs)+len(peaks))
	ti, pi := 0, 0

	for ti < len(troughs) || pi < len(peaks) {
		if pi >= len(peaks) || (ti < len(troughs) && troughs[ti] < peaks[pi]) {
			anchors = append(anchors, anchor{troughs[ti], 0})
			ti++
		} else {
			anchors = append(anchors, anchor{peaks[pi], 180})
			pi++
		}
	}

	angle := make([]float64, n)
	if len(anchors) == 0 {
		return angle
	}

	first, last := anchors[0], anchors[len(anchors)-1]
	for i := 0; i < first.idx; i++ {
		angle[i] = first.deg
	}

	for i := last.idx; i < n; i++ {
		angle[i] = last.deg
	}

	for k := 1; k < len(anchors); k++ {
		a, b := anchors[k-1], anchors[k]
		span := float64(b.idx - a.idx)

		for i := a.idx; i < b.idx; i++ {
			t := float64(i-a.idx) / span
			deg := a.deg + t*(b.deg-a.deg)

			if b.deg < a.deg {
				deg = 360 - deg
			}

			angle[i] = deg
		}
	}

	return angle
}

func argmin(x []float64) int {
	best := 0
	for i, v := range x {
		if v < x[best] {
			best = i
		}
	}

	return best
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}

	return best
}

// midCrossing returns lo + the offset in x[lo:hi] closest to the midpoint
// between the segment's extremes.
func midCrossing(x []float64, lo, hi int) int {
	seg := x[lo:hi]
	if len(seg) == 0 {
		return lo
	}

	top, bottom := seg[argmax(seg)], seg[argmin(seg)]
	mid := top - (top-bottom)/2

	best := 0
	for i, v := range seg {
		if math.Abs(v-mid) < math.Abs(seg[best]-mid) {
			best = i
		}
	}

	return lo + best
}

// RiseMid returns, for each trough-peak pair, the sample where the rising
// flank crosses its half amplitude.
func (th *Theta) RiseMid() []int {
	out := make([]int, len(th.Trough))
	for i := range th.Trough {
		out[i] = midCrossing(th.Filtered, th.Trough[i], th.Peak[i])
	}

	return out
}

// FallMid returns, for each peak and the following trough, the sample where
// the falling flank crosses its half amplitude.
func (th *Theta) FallMid() []int {
	n := len(th.Peak) - 1
	if n < 0 {
		return nil
	}

	out := make([]int, n)
	for i := range n {
		out[i] = midCrossing(th.Filtered, th.Peak[i], th.Trough[i+1])
	}

	return out
}

// PeakWidth is the time from a rising mid-crossing to the next falling one.
func (th *Theta) PeakWidth() []float64 {
	rise, fall := th.RiseMid(), th.FallMid()

	out := make([]float64, len(fall))
	for i := range fall {
		out[i] = float64(fall[i]-rise[i]) / th.Fs
	}

	return out
}

// TroughWidth is the time from a falling mid-crossing to the next rising
// one.
func (th *Theta) TroughWidth() []float64 {
	rise, fall := th.RiseMid(), th.FallMid()

	out := make([]float64, len(fall))
	for i := range fall {
		out[i] = float64(rise[i+1]-fall[i]) / th.Fs
	}

	return out
}

// Asymmetry is rise / (rise + fall) per cycle; 0.5 for a symmetric wave.
func (th *Theta) Asymmetry() []float64 {
	out := make([]float64, len(th.RiseTime))
	for i, r := range th.RiseTime {
		out[i] = r / (r + th.FallTime[i])
	}

	return out
}

// PeakTrough is peak width / (peak width + trough width) per cycle.
func (th *Theta) PeakTrough() []float64 {
	pw, tw := th.PeakWidth(), th.TroughWidth()

	out := make([]float64, len(pw))
	for i := range pw {
		out[i] = pw[i] / (pw[i] + tw[i])
	}

	return out
}

// PhaseBin is one phase window of BreakByPhase.
type PhaseBin struct {
	// Start and Center are in degrees.
	Start, Center float64
	Samples       []float64
}

// BreakByPhase groups the samples of y by theta phase in windows of binsize
// degrees, advancing by slideby (binsize when <= 0). A window covers
// [start, start+binsize) and windows never extend past 360.
func (th *Theta) BreakByPhase(y []float64, binsize, slideby float64) ([]PhaseBin, error) {
	if len(y) != len(th.Angle) {
		return nil, fmt.Errorf("%w: %d samples, %d phases", ErrLengthMismatch, len(y), len(th.Angle))
	}

	if binsize <= 0 {
		return nil, fmt.Errorf("oscillation: phase bin size must be > 0: %g", binsize)
	}

	if slideby <= 0 {
		slideby = binsize
	}

	var bins []PhaseBin
	for p := 0.0; p+binsize <= 360; p += slideby {
		var samples []float64
		for i, a := range th.Angle {
			if a >= p && a < p+binsize {
				samples = append(samples, y[i])
			}
		}

		bins = append(bins, PhaseBin{Start: p, Center: p + binsize/2, Samples: samples})
	}

	return bins, nil
}
