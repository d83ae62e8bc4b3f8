// Package assembly detects cell assemblies from binned spike counts with
// the Marchenko-Pastur / ICA procedure: significant principal components
// of the cell correlation matrix are rotated into independent patterns.
package assembly

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-ephys/stats/desc"
)

var (
	// ErrShape is returned for inputs with fewer than two cells or bins.
	ErrShape = errors.New("assembly: need at least 2 cells and 2 bins")
	// ErrNoAssemblies is returned when no eigenvalue exceeds the
	// Marchenko-Pastur bound.
	ErrNoAssemblies = errors.New("assembly: no significant components")
	// ErrFactorize is returned when a matrix decomposition fails.
	ErrFactorize = errors.New("assembly: factorization failed")
)

// Options configures ICAAssemblies.
type Options struct {
	// MaxIter caps FastICA iterations.
	MaxIter int
	// Tol is the FastICA convergence tolerance.
	Tol float64
	// Seed initialises the unmixing matrix.
	Seed uint64
}

// DefaultOptions matches the usual FastICA defaults.
func DefaultOptions() Options {
	return Options{MaxIter: 200, Tol: 1e-4, Seed: 0}
}

// Result holds the assembly patterns.
type Result struct {
	// Weights is cells x assemblies. In each column the largest-magnitude
	// weight is positive.
	Weights *mat.Dense
	// Eigenvalues of the cell correlation matrix, ascending.
	Eigenvalues []float64
	// LambdaMax is the Marchenko-Pastur upper bound.
	LambdaMax float64
	// Iterations run by FastICA.
	Iterations int
}

// NAssemblies returns the number of detected assemblies.
func (r *Result) NAssemblies() int {
	_, c := r.Weights.Dims()
	return c
}

// LambdaMax returns (1 + sqrt(cells/bins))^2, the largest eigenvalue
// expected from a correlation matrix of independent cells.
func LambdaMax(cells, bins int) float64 {
	q := math.Sqrt(float64(cells) / float64(bins))
	return (1 + q) * (1 + q)
}

// ICAAssemblies extracts assembly patterns from x (cells x bins).
func ICAAssemblies(x [][]float64, opts Options) (*Result, error) {
	m := len(x)
	if m < 2 || len(x[0]) < 2 {
		return nil, ErrShape
	}

	n := len(x[0])
	raw := mat.NewDense(m, n, nil)

	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d bins", ErrShape, i, len(row))
		}

		raw.SetRow(i, row)
	}

	z := mat.NewDense(m, n, nil)
	for i, row := range desc.ZScoreRows(x) {
		z.SetRow(i, row)
	}

	var corr mat.SymDense
	corr.SymOuterK(1/float64(n), z)

	var eig mat.EigenSym
	if !eig.Factorize(&corr, true) {
		return nil, fmt.Errorf("%w: eigen decomposition", ErrFactorize)
	}

	vals := eig.Values(nil)

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	lmax := LambdaMax(m, n)

	var sig []int
	for i, v := range vals {
		if v > lmax {
			sig = append(sig, i)
		}
	}

	if len(sig) == 0 {
		return nil, ErrNoAssemblies
	}

	k := len(sig)

	esig := mat.NewDense(m, k, nil)
	for c, i := range sig {
		esig.SetCol(c, mat.Col(nil, i, &vecs))
	}

	scores, err := pcaScores(raw, k)
	if err != nil {
		return nil, err
	}

	w, iters := fastICA(scores, opts)

	var v mat.Dense
	v.Mul(esig, w.T())
	flipLargestPositive(&v)

	return &Result{Weights: &v, Eigenvalues: vals, LambdaMax: lmax, Iterations: iters}, nil
}

// pcaScores projects the rows of x onto its first k principal axes after
// centring each column. Signs follow the largest-magnitude loading in
// each left singular vector.
func pcaScores(x *mat.Dense, k int) (*mat.Dense, error) {
	r, c := x.Dims()

	centred := mat.NewDense(r, c, nil)
	centred.Copy(x)

	for j := range c {
		col := mat.Col(nil, j, centred)
		mu := desc.Mean(col)

		for i := range r {
			centred.Set(i, j, col[i]-mu)
		}
	}

	var svd mat.SVD
	if !svd.Factorize(centred, mat.SVDThin) {
		return nil, fmt.Errorf("%w: svd", ErrFactorize)
	}

	s := svd.Values(nil)

	var u mat.Dense
	svd.UTo(&u)

	scores := mat.NewDense(r, k, nil)
	for j := range k {
		col := mat.Col(nil, j, &u)
		if col[argmaxAbs(col)] < 0 {
			for i := range col {
				col[i] = -col[i]
			}
		}

		for i := range r {
			scores.Set(i, j, col[i]*s[j])
		}
	}

	return scores, nil
}

// fastICA runs symmetric FastICA with the logcosh contrast on the columns
// of y (samples x components) without whitening. It returns the unmixing
// matrix and the iteration count.
func fastICA(y *mat.Dense, opts Options) (*mat.Dense, int) {
	nsamp, k := y.Dims()

	maxIter := opts.MaxIter
	if maxIter <= 0 {
		maxIter = 200
	}

	tol := opts.Tol
	if tol <= 0 {
		tol = 1e-4
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	w := mat.NewDense(k, k, nil)
	for i := range k {
		for j := range k {
			w.Set(i, j, rng.NormFloat64())
		}
	}

	w = symDecorrelate(w)

	// xt is components x samples
	xt := mat.DenseCopyOf(y.T())

	iters := 0
	for iters < maxIter {
		iters++

		var wx mat.Dense
		wx.Mul(w, xt)

		g := mat.NewDense(k, nsamp, nil)
		gp := make([]float64, k)

		for i := range k {
			for t := range nsamp {
				th := math.Tanh(wx.At(i, t))
				g.Set(i, t, th)
				gp[i] += 1 - th*th
			}

			gp[i] /= float64(nsamp)
		}

		var w1 mat.Dense
		w1.Mul(g, y)
		w1.Scale(1/float64(nsamp), &w1)

		for i := range k {
			for j := range k {
				w1.Set(i, j, w1.At(i, j)-gp[i]*w.At(i, j))
			}
		}

		next := symDecorrelate(&w1)

		var cross mat.Dense
		cross.Mul(next, w.T())

		lim := 0.0
		for i := range k {
			lim = math.Max(lim, math.Abs(math.Abs(cross.At(i, i))-1))
		}

		w = next
		if lim < tol {
			break
		}
	}

	return w, iters
}

// symDecorrelate returns (W W^T)^(-1/2) W.
func symDecorrelate(w *mat.Dense) *mat.Dense {
	k, _ := w.Dims()

	var wwt mat.SymDense
	wwt.SymOuterK(1, w)

	var eig mat.EigenSym
	if !eig.Factorize(&wwt, true) {
		return mat.DenseCopyOf(w)
	}

	s := eig.Values(nil)

	var u mat.Dense
	eig.VectorsTo(&u)

	d := mat.NewDiagDense(k, nil)
	for i, v := range s {
		d.SetDiag(i, 1/math.Sqrt(math.Max(v, 1e-15)))
	}

	var tmp, inv, out mat.Dense
	tmp.Mul(&u, d)
	inv.Mul(&tmp, u.T())
	out.Mul(&inv, w)

	return &out
}

func flipLargestPositive(v *mat.Dense) {
	r, c := v.Dims()

	for j := range c {
		col := mat.Col(nil, j, v)
		if col[argmaxAbs(col)] >= 0 {
			continue
		}

		for i := range r {
			v.Set(i, j, -col[i])
		}
	}
}

func argmaxAbs(x []float64) int {
	best := 0
	for i, v := range x {
		if math.Abs(v) > math.Abs(x[best]) {
			best = i
		}
	}

	return best
}

// Activation returns the assembly activation strength over time for each
// assembly: R_k(t) = z(t)^T P_k z(t) with P_k the outer product of the
// weights and its diagonal removed.
func (r *Result) Activation(x [][]float64) ([][]float64, error) {
	m, k := r.Weights.Dims()
	if len(x) != m {
		return nil, fmt.Errorf("%w: %d cells, weights for %d", ErrShape, len(x), m)
	}

	z := desc.ZScoreRows(x)
	n := len(z[0])

	out := make([][]float64, k)
	for a := range k {
		w := mat.Col(nil, a, r.Weights)
		out[a] = make([]float64, n)

		for t := range n {
			proj, self := 0.0, 0.0
			for i := range m {
				v := w[i] * z[i][t]
				proj += v
				self += v * v
			}

			out[a][t] = proj*proj - self
		}
	}

	return out, nil
}
