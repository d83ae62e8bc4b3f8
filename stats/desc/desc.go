package desc

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyInput is returned when an operation needs at least one sample.
	ErrEmptyInput = errors.New("desc: empty input")
	// ErrLengthMismatch is returned when paired inputs differ in length.
	ErrLengthMismatch = errors.New("desc: length mismatch")
	// ErrBinEdges is returned for fewer than two or non-increasing edges.
	ErrBinEdges = errors.New("desc: bin edges must be increasing")
	// ErrDuplicateEdges is returned by QCut when quantile edges collapse.
	ErrDuplicateEdges = errors.New("desc: duplicate quantile edges")
)

// ZScore returns (x - mean) / std using the population standard
// deviation. A constant input yields NaN everywhere.
func ZScore(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}

	mean, std := stat.PopMeanStdDev(x, nil)

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / std
	}

	return out
}

// ZScoreRows z-scores each row independently.
func ZScoreRows(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = ZScore(row)
	}

	return out
}

// MinMaxScale maps x onto [0, 1].
func MinMaxScale(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}

	lo, hi := floats.Min(x), floats.Max(x)
	span := hi - lo

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - lo) / span
	}

	return out
}

// MinMaxScaleRows scales each row onto [0, 1].
func MinMaxScaleRows(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = MinMaxScale(row)
	}

	return out
}

// Median returns the median of x, or NaN when x is empty.
func Median(x []float64) float64 {
	m, err := stats.Median(x)
	if err != nil {
		return math.NaN()
	}

	return m
}

// PopStd returns the population standard deviation of x.
func PopStd(x []float64) float64 {
	s, err := stats.StandardDeviationPopulation(x)
	if err != nil {
		return math.NaN()
	}

	return s
}

// Mean returns the arithmetic mean of x, or NaN when x is empty.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	return stat.Mean(x, nil)
}

// Quantile returns the q-th quantile (q in [0, 1]) of x using linear
// interpolation between closest ranks, matching numpy's default.
func Quantile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)

	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// PartialCorr returns the Pearson correlation between x and y controlling
// for z.
func PartialCorr(x, y, z []float64) (float64, error) {
	if len(x) != len(y) || len(x) != len(z) {
		return 0, fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(x), len(y), len(z))
	}

	if len(x) < 2 {
		return 0, ErrEmptyInput
	}

	xy := stat.Correlation(x, y, nil)
	xz := stat.Correlation(x, z, nil)
	zy := stat.Correlation(z, y, nil)

	return (xy - xz*zy) / (math.Sqrt(1-xz*xz) * math.Sqrt(1-zy*zy)), nil
}

// ParCorrMult evaluates PartialCorr over every combination of rows of xs,
// ys and zs. parcorr[k][j][i] controls xs[i]~ys[j] for zs[k]; revcorr swaps
// the roles of y and z.
func ParCorrMult(xs, ys, zs [][]float64) (parcorr, revcorr [][][]float64, err error) {
	parcorr = make([][][]float64, len(zs))
	revcorr = make([][][]float64, len(zs))

	for k, z := range zs {
		parcorr[k] = make([][]float64, len(ys))
		revcorr[k] = make([][]float64, len(ys))

		for j, y := range ys {
			parcorr[k][j] = make([]float64, len(xs))
			revcorr[k][j] = make([]float64, len(xs))

			for i, x := range xs {
				if parcorr[k][j][i], err = PartialCorr(x, y, z); err != nil {
					return nil, nil, err
				}

				if revcorr[k][j][i], err = PartialCorr(x, z, y); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	return parcorr, revcorr, nil
}

// Gini returns the Gini coefficient of |x| + eps.
func Gini(x []float64, eps float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}

	v := make([]float64, n)
	for i, a := range x {
		v[i] = math.Abs(a) + eps
	}

	sort.Float64s(v)

	num := 0.0
	for i, a := range v {
		num += float64(2*(i+1)-n-1) * a
	}

	return num / (float64(n) * floats.Sum(v))
}
