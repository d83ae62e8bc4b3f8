package oscillation

import (
	"fmt"

	"github.com/cwbudde/algo-ephys/stats/desc"
)

// CSD computes current source density from a depth-ordered LFP matrix
// (channels x frames) with channel coordinates along the probe.
type CSD struct {
	LFP    [][]float64
	Coords []float64
	Fs     float64
}

// CSDMap is a z-scored current source density over depth and time.
type CSDMap struct {
	Map    [][]float64
	Coords []float64
	Time   []float64
}

// Classic returns the negative second spatial difference of the LFP,
// z-scored across the whole map. Time runs symmetrically around 0 as for
// an event-triggered average.
func (c CSD) Classic() (*CSDMap, error) {
	nch := len(c.LFP)
	if nch < 3 {
		return nil, fmt.Errorf("oscillation: csd needs at least 3 channels, got %d", nch)
	}

	if len(c.Coords) != nch {
		return nil, fmt.Errorf("%w: %d coords for %d channels", ErrLengthMismatch, len(c.Coords), nch)
	}

	nframes := len(c.LFP[0])
	flat := make([]float64, 0, (nch-2)*nframes)

	for i := 1; i < nch-1; i++ {
		if len(c.LFP[i-1]) != nframes || len(c.LFP[i]) != nframes || len(c.LFP[i+1]) != nframes {
			return nil, fmt.Errorf("%w: ragged lfp rows", ErrLengthMismatch)
		}

		for t := range nframes {
			flat = append(flat, -(c.LFP[i-1][t] - 2*c.LFP[i][t] + c.LFP[i+1][t]))
		}
	}

	z := desc.ZScore(flat)

	m := make([][]float64, nch-2)
	for i := range m {
		m[i] = z[i*nframes : (i+1)*nframes]
	}

	time := desc.LinearEdges(-1, 1, max(nframes-1, 1))[:nframes]
	span := float64(nframes) / c.Fs

	for i := range time {
		time[i] *= span
	}

	return &CSDMap{
		Map:    m,
		Coords: append([]float64(nil), c.Coords[1:nch-1]...),
		Time:   time,
	}, nil
}
