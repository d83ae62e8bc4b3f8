package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// DPSS returns the first kmax discrete prolate spheroidal sequences of
// length m with time-halfbandwidth product nw, each normalized to unit L2
// norm, together with their spectral concentration ratios.
//
// The tapers are eigenvectors of the symmetric tridiagonal matrix
//
//	T[n][n]   = ((m-1-2n)/2)^2 cos(2 pi W)
//	T[n][n-1] = n (m-n) / 2
//
// with W = nw/m. The largest eigenvalues are isolated by Sturm-sequence
// bisection and their vectors recovered by inverse iteration.
func DPSS(m int, nw float64, kmax int) ([][]float64, []float64, error) {
	if err := validateDPSS(m, nw, kmax); err != nil {
		return nil, nil, err
	}

	if m == 1 {
		return [][]float64{{1}}, []float64{1}, nil
	}

	w := nw / float64(m)
	cw := math.Cos(2 * math.Pi * w)

	diag := make([]float64, m)
	off := make([]float64, m) // off[n] couples n-1 and n; off[0] unused
	for n := range diag {
		c := (float64(m-1) - 2*float64(n)) / 2
		diag[n] = c * c * cw
		if n > 0 {
			off[n] = float64(n) * float64(m-n) / 2
		}
	}

	lo, hi := gershgorin(diag, off)

	tapers := make([][]float64, kmax)
	ratios := make([]float64, kmax)
	for k := 0; k < kmax; k++ {
		lambda := kthEigenvalue(diag, off, m-1-k, lo, hi)
		v := inverseIteration(diag, off, lambda, k)
		tapers[k] = v
	}

	fixSigns(tapers)

	for k, v := range tapers {
		ratios[k] = concentration(v, w)
	}

	return tapers, ratios, nil
}

// sturmCount returns the number of eigenvalues of the tridiagonal matrix
// strictly below x.
func sturmCount(diag, off []float64, x float64) int {
	const tiny = 1e-300

	count := 0
	q := diag[0] - x
	if q < 0 {
		count++
	}

	for i := 1; i < len(diag); i++ {
		if q == 0 {
			q = tiny
		}

		q = diag[i] - x - off[i]*off[i]/q
		if q < 0 {
			count++
		}
	}

	return count
}

func gershgorin(diag, off []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)

	for i := range diag {
		r := 0.0
		if i > 0 {
			r += math.Abs(off[i])
		}

		if i+1 < len(diag) {
			r += math.Abs(off[i+1])
		}

		lo = math.Min(lo, diag[i]-r)
		hi = math.Max(hi, diag[i]+r)
	}

	return lo, hi
}

// kthEigenvalue returns eigenvalue number idx in ascending order.
func kthEigenvalue(diag, off []float64, idx int, lo, hi float64) float64 {
	for range 200 {
		mid := 0.5 * (lo + hi)
		if mid == lo || mid == hi {
			break
		}

		if sturmCount(diag, off, mid) <= idx {
			lo = mid
		} else {
			hi = mid
		}
	}

	return 0.5 * (lo + hi)
}

func inverseIteration(diag, off []float64, lambda float64, seed int) []float64 {
	m := len(diag)
	shift := lambda + 1e-10*math.Max(1, math.Abs(lambda))

	v := make([]float64, m)
	for i := range v {
		// a start vector with components along every eigenvector
		v[i] = 1 + 0.1*math.Sin(float64((i+1)*(seed+3)))
	}

	for range 3 {
		dl := make([]float64, m)
		d := make([]float64, m)
		du := make([]float64, m)
		for i := range d {
			d[i] = diag[i] - shift
			if i+1 < m {
				dl[i] = off[i+1]
				du[i] = off[i+1]
			}
		}

		solveTridiagonal(dl, d, du, v)
		normalize(v)
	}

	return v
}

// solveTridiagonal solves the tridiagonal system in place using Gaussian
// elimination with partial pivoting. dl and du hold the sub- and
// super-diagonals in their first m-1 entries; all inputs are overwritten.
func solveTridiagonal(dl, d, du, b []float64) {
	const tiny = 1e-300

	n := len(d)
	if n == 1 {
		if d[0] == 0 {
			d[0] = tiny
		}

		b[0] /= d[0]

		return
	}

	for i := 0; i < n-1; i++ {
		if math.Abs(d[i]) >= math.Abs(dl[i]) {
			if d[i] == 0 {
				d[i] = tiny
			}

			fact := dl[i] / d[i]
			d[i+1] -= fact * du[i]
			b[i+1] -= fact * b[i]
			dl[i] = 0

			continue
		}

		fact := d[i] / dl[i]
		d[i] = dl[i]
		temp := d[i+1]
		d[i+1] = du[i] - fact*temp

		if i < n-2 {
			dl[i] = du[i+1]
			du[i+1] = -fact * dl[i]
		} else {
			dl[i] = 0
		}

		du[i] = temp
		b[i], b[i+1] = b[i+1], b[i]-fact*b[i+1]
	}

	if d[n-1] == 0 {
		d[n-1] = tiny
	}

	b[n-1] /= d[n-1]
	b[n-2] = (b[n-2] - du[n-2]*b[n-1]) / d[n-2]

	for i := n - 3; i >= 0; i-- {
		b[i] = (b[i] - du[i]*b[i+1] - dl[i]*b[i+2]) / d[i]
	}
}

func normalize(v []float64) {
	norm := math.Sqrt(vecmath.DotProduct(v, v))
	if norm == 0 {
		return
	}

	vecmath.ScaleBlockInPlace(v, 1/norm)
}

// fixSigns makes symmetric tapers sum positive and antisymmetric tapers
// start with a positive lobe.
func fixSigns(tapers [][]float64) {
	if len(tapers) == 0 {
		return
	}

	thresh := math.Max(1e-7, 1/float64(len(tapers[0])))

	for k, v := range tapers {
		flip := false

		if k%2 == 0 {
			flip = vecmath.Sum(v) < 0
		} else {
			for _, x := range v {
				if x*x > thresh {
					flip = x < 0
					break
				}
			}
		}

		if flip {
			vecmath.ScaleBlockInPlace(v, -1)
		}
	}
}

// concentration returns the fraction of the taper's energy inside the band
// [-W, W].
func concentration(v []float64, w float64) float64 {
	m := len(v)

	energy := 2 * w * vecmath.DotProduct(v, v)
	for lag := 1; lag < m; lag++ {
		r := vecmath.DotProduct(v[:m-lag], v[lag:])
		energy += 2 * r * math.Sin(2*math.Pi*w*float64(lag)) / (math.Pi * float64(lag))
	}

	return energy
}
