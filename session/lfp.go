package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/core"
)

// ErrChannel is returned for channel indices outside the recording.
var ErrChannel = errors.New("session: channel out of range")

// bytesPerSample of the int16 .eeg format.
const bytesPerSample = 2

// LFP reads channels between tStart and tStop seconds from the session's
// .eeg (or .lfp) file: little-endian int16 frames of NChannels
// interleaved samples at LFPRate. A tStop <= tStart or beyond the file
// reads to the end. A nil channels slice reads every channel.
func (r *Recinfo) LFP(channels []int, tStart, tStop float64) (*core.Signal, error) {
	path, err := r.LFPPath()
	if err != nil {
		return nil, err
	}

	return ReadBinaryLFP(path, r.NChannels, r.LFPRate, channels, tStart, tStop, WithLogger(r.logger))
}

// ReadBinaryLFP reads an interleaved int16 file with nch channels at fs.
func ReadBinaryLFP(path string, nch int, fs float64, channels []int, tStart, tStop float64, opts ...Option) (*core.Signal, error) {
	o := applyOptions(opts)

	if nch <= 0 || fs <= 0 {
		return nil, fmt.Errorf("session: need channel count and sampling rate, got %d ch at %g Hz", nch, fs)
	}

	if channels == nil {
		channels = make([]int, nch)
		for i := range channels {
			channels[i] = i
		}
	}

	for _, c := range channels {
		if c < 0 || c >= nch {
			return nil, fmt.Errorf("%w: %d of %d", ErrChannel, c, nch)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lfp: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	frameBytes := int64(nch * bytesPerSample)
	total := st.Size() / frameBytes

	first := int64(math.Max(0, math.Round(tStart*fs)))
	last := total
	if tStop > tStart {
		last = min(total, int64(math.Round(tStop*fs)))
	}

	if first >= last {
		return nil, fmt.Errorf("session: empty frame range [%d, %d) of %d", first, last, total)
	}

	nframes := int(last - first)

	if _, err := f.Seek(first*frameBytes, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek lfp: %w", err)
	}

	raw := make([]int16, nframes*nch)
	if err := binary.Read(f, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("read lfp: %w", err)
	}

	traces := make([][]float64, len(channels))
	for i, c := range channels {
		tr := make([]float64, nframes)
		for k := range tr {
			tr[k] = float64(raw[k*nch+c])
		}

		traces[i] = tr
	}

	o.logger.Debug("lfp read",
		zap.String("path", path),
		zap.Int("channels", len(channels)),
		zap.String("frames", humanize.Comma(int64(nframes))),
		zap.String("bytes", humanize.Bytes(uint64(nframes)*uint64(frameBytes))))

	return core.NewSignal(traces, fs,
		core.WithTStart(float64(first)/fs), core.WithChannelIDs(channels))
}

// WriteBinaryLFP writes sig as interleaved little-endian int16 frames,
// rounding and clipping every sample to the int16 range.
func WriteBinaryLFP(path string, sig *core.Signal) error {
	nch, n := sig.NChannels(), sig.NFrames()
	raw := make([]int16, n*nch)

	for c, tr := range sig.Traces {
		for k, v := range tr {
			raw[k*nch+c] = int16(core.Clamp(math.Round(v), math.MinInt16, math.MaxInt16))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create lfp: %w", err)
	}

	if err := binary.Write(f, binary.LittleEndian, raw); err != nil {
		f.Close()
		return fmt.Errorf("write lfp: %w", err)
	}

	return f.Close()
}
