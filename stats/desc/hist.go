package desc

import (
	"fmt"
	"math"
	"sort"
)

// Histogram counts x into bins [edges[i], edges[i+1]). The last bin also
// includes its right edge. Values outside the edges and NaNs are ignored.
func Histogram(x, edges []float64) ([]int, error) {
	if err := checkEdges(edges); err != nil {
		return nil, err
	}

	counts := make([]int, len(edges)-1)
	for _, v := range x {
		if b := binIndex(v, edges); b >= 0 {
			counts[b]++
		}
	}

	return counts, nil
}

// LinearEdges returns n+1 evenly spaced edges spanning [lo, hi].
func LinearEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	for i := range edges {
		edges[i] = lo + (hi-lo)*float64(i)/float64(n)
	}

	return edges
}

// ArangeEdges returns start, start+step, ... strictly below stop.
func ArangeEdges(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return nil
	}

	edges := make([]float64, n)
	for i := range edges {
		edges[i] = start + float64(i)*step
	}

	return edges
}

// CDF returns the cumulative fraction of in-range samples per bin.
func CDF(x, edges []float64) ([]float64, error) {
	counts, err := Histogram(x, edges)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	if total == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]float64, len(counts))
	acc := 0.0

	for i, c := range counts {
		acc += float64(c) / float64(total)
		out[i] = acc
	}

	return out, nil
}

// QCut assigns each value to one of q equal-population bins. Bins are
// right-closed; the lowest value falls into bin 0. NaNs get -1.
func QCut(x []float64, q int) ([]int, error) {
	if q < 1 {
		return nil, fmt.Errorf("desc: quantile count must be >= 1: %d", q)
	}

	finite := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}

	if len(finite) == 0 {
		return nil, ErrEmptyInput
	}

	sort.Float64s(finite)

	edges := make([]float64, q+1)
	for i := range edges {
		edges[i] = quantileSorted(finite, float64(i)/float64(q))
	}

	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateEdges, edges)
		}
	}

	out := make([]int, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = -1
			continue
		}

		// first edge e with v <= e, shifted to a bin id
		b := sort.SearchFloat64s(edges[1:], v)
		out[i] = min(b, q-1)
	}

	return out, nil
}

// BinnedStatistic applies fn to the values whose x falls in each bin,
// using Histogram's bin rules. Empty bins are NaN.
func BinnedStatistic(x, values, edges []float64, fn func([]float64) float64) ([]float64, error) {
	if len(x) != len(values) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(values))
	}

	if err := checkEdges(edges); err != nil {
		return nil, err
	}

	groups := make([][]float64, len(edges)-1)
	for i, v := range x {
		if b := binIndex(v, edges); b >= 0 {
			groups[b] = append(groups[b], values[i])
		}
	}

	out := make([]float64, len(groups))
	for b, g := range groups {
		if len(g) == 0 {
			out[b] = math.NaN()
			continue
		}

		out[b] = fn(g)
	}

	return out, nil
}

func checkEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: need at least 2, got %d", ErrBinEdges, len(edges))
	}

	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return fmt.Errorf("%w: edge %d", ErrBinEdges, i)
		}
	}

	return nil
}

// binIndex returns the bin holding v, or -1 when v is out of range.
func binIndex(v float64, edges []float64) int {
	last := len(edges) - 1
	if math.IsNaN(v) || v < edges[0] || v > edges[last] {
		return -1
	}

	if v == edges[last] {
		return last - 1
	}

	return sort.Search(last, func(i int) bool { return edges[i+1] > v })
}
