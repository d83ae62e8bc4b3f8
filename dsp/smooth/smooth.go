// Package smooth implements Gaussian smoothing of traces and 2-D maps with
// half-sample symmetric (reflect) boundaries.
package smooth

import (
	"errors"
	"math"
)

// Truncate is the kernel half-width in standard deviations.
const Truncate = 4.0

// ErrInvalidSigma is returned for negative or non-finite sigma.
var ErrInvalidSigma = errors.New("smooth: sigma must be finite and >= 0")

// Kernel returns the normalized Gaussian kernel for sigma samples, of
// length 2*radius+1 with radius = int(Truncate*sigma + 0.5).
func Kernel(sigma float64) []float64 {
	radius := int(Truncate*sigma + 0.5)
	if sigma <= 0 || radius == 0 {
		return []float64{1}
	}

	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
		sum += k[i]
	}

	for i := range k {
		k[i] /= sum
	}

	return k
}

// Gaussian1D returns x smoothed by a Gaussian of sigma samples.
func Gaussian1D(x []float64, sigma float64) ([]float64, error) {
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, ErrInvalidSigma
	}

	out := make([]float64, len(x))
	if len(x) == 0 {
		return out, nil
	}

	k := Kernel(sigma)
	radius := len(k) / 2
	n := len(x)

	for i := range out {
		acc := 0.0
		for j, w := range k {
			acc += w * x[reflect(i+j-radius, n)]
		}

		out[i] = acc
	}

	return out, nil
}

// Gaussian2D smooths m along both axes with the same sigma.
func Gaussian2D(m [][]float64, sigma float64) ([][]float64, error) {
	return Gaussian2DAxes(m, sigma, sigma)
}

// Gaussian2DAxes smooths the rows of m by sigmaCols (along each row) and the
// columns by sigmaRows. A zero sigma leaves that axis untouched.
func Gaussian2DAxes(m [][]float64, sigmaRows, sigmaCols float64) ([][]float64, error) {
	out := make([][]float64, len(m))

	for i, row := range m {
		r, err := Gaussian1D(row, sigmaCols)
		if err != nil {
			return nil, err
		}

		out[i] = r
	}

	if len(out) == 0 || sigmaRows == 0 {
		return out, nil
	}

	col := make([]float64, len(out))
	for j := range out[0] {
		for i := range out {
			col[i] = out[i][j]
		}

		c, err := Gaussian1D(col, sigmaRows)
		if err != nil {
			return nil, err
		}

		for i := range out {
			out[i][j] = c[i]
		}
	}

	return out, nil
}

// reflect maps an out-of-range index onto d c b a | a b c d | d c b a.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}

	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}

	if i >= n {
		i = period - 1 - i
	}

	return i
}
