// Package ccg computes spike-train cross-correlograms and peri-event time
// histograms.
package ccg

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/cwbudde/algo-ephys/stats/desc"
)

var (
	// ErrBinSize is returned when the bin is shorter than one sample or
	// the window is not positive.
	ErrBinSize = errors.New("ccg: invalid bin or window size")
	// ErrLengthMismatch is returned when paired slices differ in length.
	ErrLengthMismatch = errors.New("ccg: length mismatch")
)

// Result holds correlograms for every ordered cluster pair.
type Result struct {
	// Clusters are the cluster ids, ascending.
	Clusters []int
	// Counts[i][j][k] counts spikes of Clusters[j] at lag Lags[k] after a
	// spike of Clusters[i].
	Counts [][][]int
	// Lags are the bin centres in seconds, symmetric around 0.
	Lags    []float64
	BinSize float64
}

// Pair returns the correlogram of cluster a (reference) against b.
func (r *Result) Pair(a, b int) ([]int, error) {
	i, ok := slices.BinarySearch(r.Clusters, a)
	if !ok {
		return nil, fmt.Errorf("ccg: cluster %d not present", a)
	}

	j, ok := slices.BinarySearch(r.Clusters, b)
	if !ok {
		return nil, fmt.Errorf("ccg: cluster %d not present", b)
	}

	return r.Counts[i][j], nil
}

// Correlograms counts, for every pair of clusters, the spikes of one
// cluster around each spike of the other within +/- windowSize/2. Times
// are in seconds and are rounded to samples at fs; lags are rounded to
// whole bins. The zero-lag bin of each auto-correlogram is cleared.
func Correlograms(times []float64, clusters []int, fs, binSize, windowSize float64) (*Result, error) {
	return correlograms(times, clusters, nil, fs, binSize, windowSize)
}

// clusterIDs fixes the output clusters when non-nil, so empty clusters
// still get rows.
func correlograms(times []float64, clusters, clusterIDs []int, fs, binSize, windowSize float64) (*Result, error) {
	if len(times) != len(clusters) {
		return nil, fmt.Errorf("%w: %d times, %d clusters", ErrLengthMismatch, len(times), len(clusters))
	}

	binSamples := int(fs * binSize)
	if binSamples < 1 || windowSize <= 0 {
		return nil, fmt.Errorf("%w: bin %g s at %g Hz, window %g s", ErrBinSize, binSize, fs, windowSize)
	}

	half := int(0.5 * windowSize / binSize)
	nbins := 2*half + 1

	ids := clusterIDs
	if ids == nil {
		ids = slices.Clone(clusters)
		slices.Sort(ids)
		ids = slices.Compact(ids)
	}

	index := make(map[int]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	samples := make([]int64, len(times))
	cl := make([]int, len(times))

	for k, i := range order {
		samples[k] = int64(math.RoundToEven(times[i] * fs))

		c, ok := index[clusters[i]]
		if !ok {
			c = -1
		}

		cl[k] = c
	}

	// one-sided counts, lag 0..half
	oneSided := make([][][]int, len(ids))
	for i := range oneSided {
		oneSided[i] = make([][]int, len(ids))
		for j := range oneSided[i] {
			oneSided[i][j] = make([]int, half+1)
		}
	}

	n := len(samples)
	for i := range n {
		for j := i + 1; j < n; j++ {
			lag := int(math.RoundToEven(float64(samples[j]-samples[i]) / float64(binSamples)))
			if float64(lag) > float64(nbins)/2 {
				break
			}

			if cl[i] < 0 || cl[j] < 0 {
				continue
			}

			oneSided[cl[i]][cl[j]][lag]++
		}
	}

	for i := range ids {
		oneSided[i][i][0] = 0
	}

	res := &Result{
		Clusters: ids,
		Counts:   make([][][]int, len(ids)),
		Lags:     make([]float64, nbins),
		BinSize:  binSize,
	}

	for k := range nbins {
		res.Lags[k] = float64(k-half) * binSize
	}

	// negative lags of (i, j) are the positive lags of (j, i)
	for i := range ids {
		res.Counts[i] = make([][]int, len(ids))

		for j := range ids {
			row := make([]int, nbins)
			for k := 1; k <= half; k++ {
				row[half-k] = oneSided[j][i][k]
			}

			copy(row[half:], oneSided[i][j])

			// coincident spikes of two clusters count in both directions
			if i != j {
				row[half] += oneSided[j][i][0]
			}

			res.Counts[i][j] = row
		}
	}

	return res, nil
}

// PSTH is a set of peri-event histograms of one event train, one per
// group of reference events.
type PSTH struct {
	// Counts[g] is the histogram of events around reference group g.
	Counts  [][]int
	Lags    []float64
	BinSize float64
}

// EventPSTH histograms event times around ref times. With nQuantiles > 1,
// ref is split into equal-population groups of quantParam (one value per
// reference event) and each group gets its own row; otherwise quantParam
// may be nil.
func EventPSTH(ref, event []float64, fs float64, quantParam []float64, binSize, window float64, nQuantiles int) (*PSTH, error) {
	if nQuantiles < 1 {
		nQuantiles = 1
	}

	groups := make([]int, len(ref))

	if nQuantiles > 1 {
		if len(quantParam) != len(ref) {
			return nil, fmt.Errorf("%w: %d quantile values for %d reference events", ErrLengthMismatch, len(quantParam), len(ref))
		}

		q, err := desc.QCut(quantParam, nQuantiles)
		if err != nil {
			return nil, err
		}

		groups = q
	}

	eventID := nQuantiles

	times := make([]float64, 0, len(ref)+len(event))
	ids := make([]int, 0, len(ref)+len(event))

	times = append(times, ref...)
	ids = append(ids, groups...)

	for _, t := range event {
		times = append(times, t)
		ids = append(ids, eventID)
	}

	clusterIDs := make([]int, nQuantiles+1)
	for i := range clusterIDs {
		clusterIDs[i] = i
	}

	res, err := correlograms(times, ids, clusterIDs, fs, binSize, window)
	if err != nil {
		return nil, err
	}

	out := &PSTH{Counts: make([][]int, nQuantiles), Lags: res.Lags, BinSize: binSize}
	for g := range nQuantiles {
		out.Counts[g] = res.Counts[g][eventID]
	}

	return out, nil
}
