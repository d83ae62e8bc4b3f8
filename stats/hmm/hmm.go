// Package hmm fits one-dimensional Gaussian hidden Markov models with
// Baum-Welch and decodes state sequences with Viterbi.
package hmm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-ephys/stats/desc"
)

var (
	// ErrTooFewSamples is returned when there are fewer observations than
	// states.
	ErrTooFewSamples = errors.New("hmm: fewer samples than states")
	// ErrStates is returned for a state count below 1.
	ErrStates = errors.New("hmm: need at least one state")
)

// varianceFloor keeps emission variances away from zero.
const varianceFloor = 1e-3

// GaussianHMM is a hidden Markov model with one Gaussian emission per
// state.
type GaussianHMM struct {
	Start []float64
	Trans [][]float64
	Means []float64
	Vars  []float64
	// LogLikelihood of the training data after the last iteration.
	LogLikelihood float64
	// Iterations actually run.
	Iterations int
}

// New returns an untrained k-state model with uniform start and
// transition probabilities.
func New(k int) (*GaussianHMM, error) {
	if k < 1 {
		return nil, ErrStates
	}

	m := &GaussianHMM{
		Start: make([]float64, k),
		Trans: make([][]float64, k),
		Means: make([]float64, k),
		Vars:  make([]float64, k),
	}

	for i := range k {
		m.Start[i] = 1 / float64(k)
		m.Trans[i] = make([]float64, k)

		for j := range k {
			m.Trans[i][j] = 1 / float64(k)
		}
	}

	return m, nil
}

// K returns the number of states.
func (m *GaussianHMM) K() int { return len(m.Means) }

// Fit runs at most nIter Baum-Welch iterations on x, stopping early once
// the log likelihood improves by less than tol. Means and variances are
// seeded by 1-D k-means from quantile starting points, so Fit is
// deterministic.
func (m *GaussianHMM) Fit(x []float64, nIter int, tol float64) error {
	k := m.K()
	if len(x) < k {
		return fmt.Errorf("%w: %d < %d", ErrTooFewSamples, len(x), k)
	}

	m.initEmissions(x)

	prev := math.Inf(-1)
	m.Iterations = 0

	for range nIter {
		ll := m.step(x)
		m.Iterations++
		m.LogLikelihood = ll

		if ll-prev < tol {
			break
		}

		prev = ll
	}

	return nil
}

// initEmissions seeds means with k-means starting at evenly spaced
// quantiles and sets each variance from its cluster.
func (m *GaussianHMM) initEmissions(x []float64) {
	k := m.K()

	for i := range k {
		m.Means[i] = desc.Quantile(x, (float64(i)+0.5)/float64(k))
	}

	assign := make([]int, len(x))

	for range 100 {
		changed := false

		for n, v := range x {
			best := 0
			for i := 1; i < k; i++ {
				if math.Abs(v-m.Means[i]) < math.Abs(v-m.Means[best]) {
					best = i
				}
			}

			if assign[n] != best {
				assign[n] = best
				changed = true
			}
		}

		sums := make([]float64, k)
		counts := make([]float64, k)

		for n, v := range x {
			sums[assign[n]] += v
			counts[assign[n]]++
		}

		for i := range k {
			if counts[i] > 0 {
				m.Means[i] = sums[i] / counts[i]
			}
		}

		if !changed {
			break
		}
	}

	global := desc.PopStd(x)
	for i := range k {
		var ss, c float64

		for n, v := range x {
			if assign[n] == i {
				d := v - m.Means[i]
				ss += d * d
				c++
			}
		}

		m.Vars[i] = global * global
		if c > 1 {
			m.Vars[i] = ss / c
		}

		m.Vars[i] = math.Max(m.Vars[i], varianceFloor)
	}
}

// emissions returns b[t][i] = p(x[t] | state i).
func (m *GaussianHMM) emissions(x []float64) [][]float64 {
	k := m.K()
	dists := make([]distuv.Normal, k)

	for i := range k {
		dists[i] = distuv.Normal{Mu: m.Means[i], Sigma: math.Sqrt(m.Vars[i])}
	}

	b := make([][]float64, len(x))
	for t, v := range x {
		b[t] = make([]float64, k)
		for i := range k {
			// keep underflowing outliers representable
			b[t][i] = math.Max(dists[i].Prob(v), 1e-300)
		}
	}

	return b
}

// forward runs the scaled forward pass and returns alpha, the per-step
// scale factors and the log likelihood.
func (m *GaussianHMM) forward(b [][]float64) ([][]float64, []float64, float64) {
	k, n := m.K(), len(b)
	alpha := make([][]float64, n)
	scale := make([]float64, n)

	for t := range n {
		alpha[t] = make([]float64, k)

		for j := range k {
			if t == 0 {
				alpha[t][j] = m.Start[j] * b[t][j]
				continue
			}

			s := 0.0
			for i := range k {
				s += alpha[t-1][i] * m.Trans[i][j]
			}

			alpha[t][j] = s * b[t][j]
		}

		scale[t] = floats.Sum(alpha[t])
		floats.Scale(1/scale[t], alpha[t])
	}

	ll := 0.0
	for _, c := range scale {
		ll += math.Log(c)
	}

	return alpha, scale, ll
}

func (m *GaussianHMM) backward(b [][]float64, scale []float64) [][]float64 {
	k, n := m.K(), len(b)
	beta := make([][]float64, n)

	beta[n-1] = make([]float64, k)
	for i := range k {
		beta[n-1][i] = 1
	}

	for t := n - 2; t >= 0; t-- {
		beta[t] = make([]float64, k)

		for i := range k {
			s := 0.0
			for j := range k {
				s += m.Trans[i][j] * b[t+1][j] * beta[t+1][j]
			}

			beta[t][i] = s / scale[t+1]
		}
	}

	return beta
}

// step performs one EM update and returns the log likelihood of x under
// the parameters before the update.
func (m *GaussianHMM) step(x []float64) float64 {
	k, n := m.K(), len(x)
	b := m.emissions(x)
	alpha, scale, ll := m.forward(b)
	beta := m.backward(b, scale)

	gamma := make([][]float64, n)
	for t := range n {
		gamma[t] = make([]float64, k)
		for i := range k {
			gamma[t][i] = alpha[t][i] * beta[t][i]
		}

		if s := floats.Sum(gamma[t]); s > 0 {
			floats.Scale(1/s, gamma[t])
		}
	}

	xi := make([][]float64, k)
	for i := range xi {
		xi[i] = make([]float64, k)
	}

	for t := 0; t < n-1; t++ {
		for i := range k {
			for j := range k {
				xi[i][j] += alpha[t][i] * m.Trans[i][j] * b[t+1][j] * beta[t+1][j] / scale[t+1]
			}
		}
	}

	copy(m.Start, gamma[0])

	for i := range k {
		if s := floats.Sum(xi[i]); s > 0 {
			for j := range k {
				m.Trans[i][j] = xi[i][j] / s
			}
		}

		var w, mu float64
		for t := range n {
			w += gamma[t][i]
			mu += gamma[t][i] * x[t]
		}

		if w == 0 {
			continue
		}

		mu /= w

		v := 0.0
		for t := range n {
			d := x[t] - mu
			v += gamma[t][i] * d * d
		}

		m.Means[i] = mu
		m.Vars[i] = math.Max(v/w, varianceFloor)
	}

	return ll
}

// Score returns the log likelihood of x.
func (m *GaussianHMM) Score(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	_, _, ll := m.forward(m.emissions(x))

	return ll
}

// Predict returns the most likely state sequence for x.
func (m *GaussianHMM) Predict(x []float64) []int {
	n, k := len(x), m.K()
	if n == 0 {
		return nil
	}

	b := m.emissions(x)
	delta := make([][]float64, n)
	psi := make([][]int, n)

	logTrans := make([][]float64, k)
	for i := range k {
		logTrans[i] = make([]float64, k)
		for j := range k {
			logTrans[i][j] = math.Log(m.Trans[i][j])
		}
	}

	for t := range n {
		delta[t] = make([]float64, k)
		psi[t] = make([]int, k)

		for j := range k {
			if t == 0 {
				delta[t][j] = math.Log(m.Start[j]) + math.Log(b[t][j])
				continue
			}

			best, arg := math.Inf(-1), 0
			for i := range k {
				if v := delta[t-1][i] + logTrans[i][j]; v > best {
					best, arg = v, i
				}
			}

			delta[t][j] = best + math.Log(b[t][j])
			psi[t][j] = arg
		}
	}

	path := make([]int, n)
	path[n-1] = floats.MaxIdx(delta[n-1])

	for t := n - 1; t > 0; t-- {
		path[t-1] = psi[t][path[t]]
	}

	return path
}

// SortStates reorders the states by ascending mean.
func (m *GaussianHMM) SortStates() {
	k := m.K()
	idx := make([]int, k)

	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool { return m.Means[idx[a]] < m.Means[idx[b]] })

	start := make([]float64, k)
	means := make([]float64, k)
	vars := make([]float64, k)
	trans := make([][]float64, k)

	for a, i := range idx {
		start[a], means[a], vars[a] = m.Start[i], m.Means[i], m.Vars[i]
		trans[a] = make([]float64, k)

		for b, j := range idx {
			trans[a][b] = m.Trans[i][j]
		}
	}

	m.Start, m.Means, m.Vars, m.Trans = start, means, vars, trans
}

// Fit1D fits an nComp-state model to data and labels every sample, the
// state with the lowest mean being 0. NaN samples are left out of the fit
// and labelled NaN. The first two and last two fitted samples are forced
// to state 0.
func Fit1D(data []float64, nComp, nIter int) ([]float64, *GaussianHMM, error) {
	var (
		clean []float64
		keep  []int
	)

	for i, v := range data {
		if !math.IsNaN(v) {
			clean = append(clean, v)
			keep = append(keep, i)
		}
	}

	m, err := New(nComp)
	if err != nil {
		return nil, nil, err
	}

	if err := m.Fit(clean, nIter, 1e-2); err != nil {
		return nil, nil, err
	}

	m.SortStates()
	states := m.Predict(clean)

	for i := 0; i < min(2, len(states)); i++ {
		states[i] = 0
		states[len(states)-1-i] = 0
	}

	labels := make([]float64, len(data))
	for i := range labels {
		labels[i] = math.NaN()
	}

	for k, i := range keep {
		labels[i] = float64(states[k])
	}

	return labels, m, nil
}
