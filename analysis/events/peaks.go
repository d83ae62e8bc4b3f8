package events

import (
	"math"
	"sort"
)

// Bounds is an inclusive [Min, Max] range. A NaN side is unbounded.
type Bounds struct {
	Min, Max float64
}

// Unbounded accepts every value.
var Unbounded = Bounds{Min: math.NaN(), Max: math.NaN()}

// AtLeast returns Bounds with only a lower limit.
func AtLeast(v float64) Bounds { return Bounds{Min: v, Max: math.NaN()} }

// Contains reports whether v satisfies the bounds.
func (b Bounds) Contains(v float64) bool {
	return (math.IsNaN(b.Min) || v >= b.Min) && (math.IsNaN(b.Max) || v <= b.Max)
}

// Peaks describes the local maxima found by FindPeaks. All slices are
// indexed alike.
type Peaks struct {
	Indices     []int
	Heights     []float64
	Prominences []float64
	LeftBases   []int
	RightBases  []int
}

// Len returns the number of peaks.
func (p Peaks) Len() int { return len(p.Indices) }

// PeakOption configures FindPeaks.
type PeakOption func(*peakConfig)

type peakConfig struct {
	height     *Bounds
	prominence *Bounds
	distance   float64
}

// WithHeight keeps peaks whose value lies in b.
func WithHeight(b Bounds) PeakOption {
	return func(c *peakConfig) { c.height = &b }
}

// WithProminence keeps peaks whose prominence lies in b.
func WithProminence(b Bounds) PeakOption {
	return func(c *peakConfig) { c.prominence = &b }
}

// WithDistance enforces a minimum horizontal distance in samples between
// peaks. Higher peaks win.
func WithDistance(d float64) PeakOption {
	return func(c *peakConfig) { c.distance = d }
}

// FindPeaks returns the local maxima of x. A flat top counts as one peak
// at its midpoint (rounded down); the first and last samples never count.
// Filters run in the order height, distance, prominence.
func FindPeaks(x []float64, opts ...PeakOption) Peaks {
	var cfg peakConfig
	for _, o := range opts {
		o(&cfg)
	}

	peaks := localMaxima(x)

	if cfg.height != nil {
		peaks = filter(peaks, func(i int) bool { return cfg.height.Contains(x[i]) })
	}

	if cfg.distance > 1 {
		peaks = selectByDistance(x, peaks, cfg.distance)
	}

	prom, left, right := prominences(x, peaks)

	out := Peaks{}

	for k, i := range peaks {
		if cfg.prominence != nil && !cfg.prominence.Contains(prom[k]) {
			continue
		}

		out.Indices = append(out.Indices, i)
		out.Heights = append(out.Heights, x[i])
		out.Prominences = append(out.Prominences, prom[k])
		out.LeftBases = append(out.LeftBases, left[k])
		out.RightBases = append(out.RightBases, right[k])
	}

	return out
}

func localMaxima(x []float64) []int {
	var peaks []int

	n := len(x)
	for i := 1; i < n-1; i++ {
		if x[i-1] >= x[i] {
			continue
		}

		ahead := i + 1
		for ahead < n-1 && x[ahead] == x[i] {
			ahead++
		}

		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead - 1
		}
	}

	return peaks
}

func filter(idx []int, keep func(int) bool) []int {
	out := idx[:0:0]
	for _, i := range idx {
		if keep(i) {
			out = append(out, i)
		}
	}

	return out
}

func selectByDistance(x []float64, peaks []int, distance float64) []int {
	d := int(math.Ceil(distance))
	keep := make([]bool, len(peaks))

	for i := range keep {
		keep[i] = true
	}

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}

	// highest first; among equal heights the later peak wins, as a reversed
	// stable ascending sort gives
	sort.SliceStable(order, func(a, b int) bool { return x[peaks[order[a]]] < x[peaks[order[b]]] })

	for k := len(order) - 1; k >= 0; k-- {
		j := order[k]
		if !keep[j] {
			continue
		}

		for l := j - 1; l >= 0 && peaks[j]-peaks[l] < d; l-- {
			keep[l] = false
		}

		for l := j + 1; l < len(peaks) && peaks[l]-peaks[j] < d; l++ {
			keep[l] = false
		}
	}

	var out []int

	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}

	return out
}

// prominences computes the vertical distance between each peak and its
// higher base, searching outwards until a higher sample or the trace edge.
func prominences(x []float64, peaks []int) (prom []float64, left, right []int) {
	prom = make([]float64, len(peaks))
	left = make([]int, len(peaks))
	right = make([]int, len(peaks))

	for k, p := range peaks {
		leftMin := x[p]
		left[k] = p

		for i := p; i >= 0 && x[i] <= x[p]; i-- {
			if x[i] < leftMin {
				leftMin = x[i]
				left[k] = i
			}
		}

		rightMin := x[p]
		right[k] = p

		for i := p; i < len(x) && x[i] <= x[p]; i++ {
			if x[i] < rightMin {
				rightMin = x[i]
				right[k] = i
			}
		}

		prom[k] = x[p] - math.Max(leftMin, rightMin)
	}

	return prom, left, right
}
