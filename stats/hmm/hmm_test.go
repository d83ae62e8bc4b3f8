package hmm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ephys/internal/testutil"
)

// blocks alternates between a high and a low level every 200 samples,
// starting high, and returns the data with its true state (1 = high).
func blocks(n int) ([]float64, []int) {
	noise := testutil.GaussianNoise(7, 1, n)
	x := make([]float64, n)
	truth := make([]int, n)

	for i := range x {
		if (i/200)%2 == 0 {
			truth[i] = 1
			x[i] = 6 + noise[i]
		} else {
			x[i] = noise[i]
		}
	}

	return x, truth
}

func TestFitRecoversStates(t *testing.T) {
	x, truth := blocks(2000)

	m, err := New(2)
	require.NoError(t, err)
	require.NoError(t, m.Fit(x, 50, 1e-4))

	m.SortStates()
	assert.InDelta(t, 0, m.Means[0], 0.2)
	assert.InDelta(t, 6, m.Means[1], 0.2)
	assert.InDelta(t, 1, m.Vars[0], 0.2)
	assert.Greater(t, m.Trans[0][0], 0.95)
	assert.Greater(t, m.Trans[1][1], 0.95)

	path := m.Predict(x)
	agree := 0

	for i := range path {
		if path[i] == truth[i] {
			agree++
		}
	}

	assert.Greater(t, float64(agree)/float64(len(x)), 0.99)
	assert.InDelta(t, m.Score(x), m.LogLikelihood, math.Abs(m.LogLikelihood)*0.01)
}

func TestFit1D(t *testing.T) {
	x, truth := blocks(1200)
	x[500] = math.NaN()
	x[501] = math.NaN()

	labels, m, err := Fit1D(x, 2, 50)
	require.NoError(t, err)
	require.Len(t, labels, len(x))

	assert.True(t, math.IsNaN(labels[500]))
	assert.True(t, math.IsNaN(labels[501]))

	// the block starts high, but the edges are pinned to state 0
	assert.Equal(t, []float64{0, 0}, labels[:2])
	assert.Equal(t, []float64{0, 0}, labels[len(labels)-2:])
	assert.Equal(t, 1.0, labels[2])

	assert.Less(t, m.Means[0], m.Means[1])

	wrong := 0
	for i := 2; i < len(x)-2; i++ {
		if i == 500 || i == 501 {
			continue
		}

		if labels[i] != float64(truth[i]) {
			wrong++
		}
	}

	assert.Less(t, wrong, 12)
}

func TestSortStates(t *testing.T) {
	m := &GaussianHMM{
		Start: []float64{0.2, 0.8},
		Trans: [][]float64{{0.9, 0.1}, {0.3, 0.7}},
		Means: []float64{5, -1},
		Vars:  []float64{1, 2},
	}

	m.SortStates()

	assert.Equal(t, []float64{-1, 5}, m.Means)
	assert.Equal(t, []float64{2, 1}, m.Vars)
	assert.Equal(t, []float64{0.8, 0.2}, m.Start)
	assert.Equal(t, [][]float64{{0.7, 0.3}, {0.1, 0.9}}, m.Trans)
}

func TestPredictStickyModel(t *testing.T) {
	m := &GaussianHMM{
		Start: []float64{0.5, 0.5},
		Trans: [][]float64{{0.99, 0.01}, {0.01, 0.99}},
		Means: []float64{0, 10},
		Vars:  []float64{1, 1},
	}

	// a lone outlier inside a low stretch is smoothed away
	x := []float64{0, 0.3, -0.2, 4.9, 0.1, 0, 10, 9.5, 10.2}
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1, 1, 1}, m.Predict(x))
}

func TestErrors(t *testing.T) {
	_, err := New(0)
	assert.True(t, errors.Is(err, ErrStates))

	m, err := New(3)
	require.NoError(t, err)
	assert.True(t, errors.Is(m.Fit([]float64{1, 2}, 10, 1e-3), ErrTooFewSamples))
}
