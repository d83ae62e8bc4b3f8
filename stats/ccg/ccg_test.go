package ccg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelogramsPair(t *testing.T) {
	// cluster 2 fires 20 ms after every cluster 1 spike
	var (
		times    []float64
		clusters []int
	)

	for k := range 10 {
		t0 := float64(k)
		times = append(times, t0, t0+0.02)
		clusters = append(clusters, 1, 2)
	}

	res, err := Correlograms(times, clusters, 1000, 0.01, 0.1)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, res.Clusters)
	require.Len(t, res.Lags, 11)
	assert.InDelta(t, -0.05, res.Lags[0], 1e-12)
	assert.InDelta(t, 0, res.Lags[5], 1e-12)

	c12, err := res.Pair(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, c12[7])
	assert.Equal(t, 10, sum(c12))

	c21, err := res.Pair(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, c21[3])

	// auto-correlograms are empty: spikes are a second apart
	auto, err := res.Pair(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, sum(auto))

	_, err = res.Pair(3, 1)
	assert.Error(t, err)
}

func TestCorrelogramsSymmetry(t *testing.T) {
	times := []float64{0.100, 0.103, 0.111, 0.125, 0.126, 0.140, 0.152}
	clusters := []int{0, 1, 0, 2, 1, 0, 2}

	res, err := Correlograms(times, clusters, 20000, 0.005, 0.06)
	require.NoError(t, err)

	nb := len(res.Lags)
	for i := range res.Clusters {
		for j := range res.Clusters {
			for k := range nb {
				assert.Equal(t, res.Counts[i][j][k], res.Counts[j][i][nb-1-k], "pair %d,%d lag %d", i, j, k)
			}
		}

		assert.Equal(t, 0, res.Counts[i][i][nb/2], "zero lag of %d", i)
	}
}

func TestCorrelogramsCoincident(t *testing.T) {
	// clusters 3 and 4 fire within the same bin
	res, err := Correlograms([]float64{1.0, 1.001, 2.0}, []int{4, 3, 4}, 1000, 0.01, 0.1)
	require.NoError(t, err)

	mid := len(res.Lags) / 2

	c34, err := res.Pair(3, 4)
	require.NoError(t, err)

	c43, err := res.Pair(4, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, c34[mid])
	assert.Equal(t, 1, c43[mid])
	assert.Equal(t, 1, sum(c34))
	assert.Equal(t, 1, sum(c43))
}

func TestCorrelogramsUnsorted(t *testing.T) {
	a, err := Correlograms([]float64{0.5, 0.1, 0.12}, []int{1, 0, 1}, 1000, 0.01, 0.2)
	require.NoError(t, err)

	b, err := Correlograms([]float64{0.1, 0.12, 0.5}, []int{0, 1, 1}, 1000, 0.01, 0.2)
	require.NoError(t, err)

	assert.Equal(t, b.Counts, a.Counts)
}

func TestCorrelogramsErrors(t *testing.T) {
	_, err := Correlograms([]float64{1}, []int{1, 2}, 1000, 0.01, 1)
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = Correlograms([]float64{1}, []int{1}, 100, 0.001, 1)
	assert.True(t, errors.Is(err, ErrBinSize))
}

func TestEventPSTH(t *testing.T) {
	ref := []float64{1, 2, 3, 4}
	event := []float64{1.05, 2.05, 3.2, 4.2}

	psth, err := EventPSTH(ref, event, 1000, nil, 0.05, 1, 1)
	require.NoError(t, err)
	require.Len(t, psth.Counts, 1)

	row := psth.Counts[0]
	require.Len(t, row, 21)
	assert.Equal(t, 2, row[11])
	assert.Equal(t, 2, row[14])
	assert.Equal(t, 4, sum(row))
}

func TestEventPSTHQuantiles(t *testing.T) {
	ref := []float64{1, 2, 3, 4}
	event := []float64{1.05, 2.05, 3.2, 4.2}
	// the last two references have the larger parameter
	param := []float64{0.1, 0.2, 0.9, 0.8}

	psth, err := EventPSTH(ref, event, 1000, param, 0.05, 1, 2)
	require.NoError(t, err)
	require.Len(t, psth.Counts, 2)

	assert.Equal(t, 2, psth.Counts[0][11])
	assert.Equal(t, 0, psth.Counts[0][14])
	assert.Equal(t, 2, psth.Counts[1][14])

	_, err = EventPSTH(ref, event, 1000, param[:2], 0.05, 1, 2)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func sum(x []int) int {
	s := 0
	for _, v := range x {
		s += v
	}

	return s
}
