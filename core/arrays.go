package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
	"go.uber.org/zap"
)

// SaveArray writes m to path in .npy format.
func SaveArray(path string, m *mat.Dense, opts ...IOOption) error {
	cfg := applyIO(opts)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := npyio.Write(f, m); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	r, c := m.Dims()
	cfg.logger.Debug("saved array", zap.String("path", path), zap.Int("rows", r), zap.Int("cols", c))

	return f.Close()
}

// LoadArray reads a 2-D .npy file.
func LoadArray(path string) (*mat.Dense, error) {
	f, err := openExisting(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &m, nil
}

// SaveVector writes x to path as a 1-D .npy array.
func SaveVector(path string, x []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := npyio.Write(f, x); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// LoadVector reads a 1-D .npy array of float64.
func LoadVector(path string) ([]float64, error) {
	f, err := openExisting(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var x []float64
	if err := npyio.Read(f, &x); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return x, nil
}

// SignalMatrix copies the traces of s into a channels x frames matrix.
func SignalMatrix(s *Signal) *mat.Dense {
	m := mat.NewDense(s.NChannels(), s.NFrames(), nil)
	for c, tr := range s.Traces {
		m.SetRow(c, tr)
	}

	return m
}

// SpectrogramMatrix copies a spectrogram into a freq x time matrix.
func SpectrogramMatrix(sg *Spectrogram) *mat.Dense {
	m := mat.NewDense(len(sg.Freqs), sg.NTimes(), nil)
	for i, row := range sg.Traces {
		m.SetRow(i, row)
	}

	return m
}

func openExisting(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoFile, path)
	}

	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}
