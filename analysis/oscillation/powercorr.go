package oscillation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-ephys/dsp/spectrum"
)

// PowerCorr is a frequency-by-frequency correlation of spectrogram power.
type PowerCorr struct {
	Freqs []float64
	// Corr[i][j] is the Pearson correlation of power at Freqs[i] and
	// Freqs[j] across time. The diagonal is zero.
	Corr [][]float64
}

// PowerCorrelation correlates spectrogram power between frequencies. window
// and overlap are in seconds. A non-nil band restricts the result to
// frequencies strictly inside it.
func PowerCorrelation(x []float64, fs, window, overlap float64, band *[2]float64) (*PowerCorr, error) {
	tf, err := spectrum.Spectrogram(x, fs,
		spectrum.WithSegment(int(window*fs)), spectrum.WithOverlap(int(overlap*fs)))
	if err != nil {
		return nil, err
	}

	rows := make([]int, 0, len(tf.Freqs))
	if band != nil {
		rows = spectrum.BandIndices(tf.Freqs, band[0], band[1])
	} else {
		for i := range tf.Freqs {
			rows = append(rows, i)
		}
	}

	nt := len(tf.Times)
	if len(rows) == 0 || nt < 2 {
		return nil, fmt.Errorf("oscillation: power correlation needs >= 2 segments and a non-empty band")
	}

	// observations are time bins, variables are frequencies
	obs := mat.NewDense(nt, len(rows), nil)
	freqs := make([]float64, len(rows))

	for j, r := range rows {
		freqs[j] = tf.Freqs[r]
		for t := range nt {
			obs.Set(t, j, tf.Power[r][t])
		}
	}

	var cm mat.SymDense
	stat.CorrelationMatrix(&cm, obs, nil)

	corr := make([][]float64, len(rows))
	for i := range corr {
		corr[i] = make([]float64, len(rows))
		for j := range corr[i] {
			if i != j {
				corr[i][j] = cm.At(i, j)
			}
		}
	}

	return &PowerCorr{Freqs: freqs, Corr: corr}, nil
}
