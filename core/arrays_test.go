package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestArrayRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := testSignal(t)
	m := SignalMatrix(s)

	path := filepath.Join(dir, "lfp.npy")
	require.NoError(t, SaveArray(path, m))

	got, err := LoadArray(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, got))

	vpath := filepath.Join(dir, "rate.npy")
	require.NoError(t, SaveVector(vpath, []float64{1, 2, 3}))

	v, err := LoadVector(vpath)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v)

	_, err = LoadArray(filepath.Join(dir, "none.npy"))
	require.ErrorIs(t, err, ErrNoFile)
}

func TestSpectrogramMatrix(t *testing.T) {
	sg := &Spectrogram{
		Traces:       [][]float64{{1, 2, 3}, {4, 5, 6}},
		Freqs:        []float64{4, 8},
		SamplingRate: 2,
	}

	m := SpectrogramMatrix(sg)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 6.0, m.At(1, 2), 0)
}
