package zerophase

import (
	"fmt"
	"sort"
)

// Band is a named LFP frequency band in Hz.
type Band struct {
	Name     string
	Low      float64
	High     float64
	Order    int
	Describe string
}

// Canonical rodent hippocampal/cortical LFP bands.
var (
	Delta       = Band{Name: "delta", Low: 0.5, High: 4, Order: 3, Describe: "slow-wave sleep"}
	Theta       = Band{Name: "theta", Low: 4, High: 10, Order: 3, Describe: "locomotion and REM"}
	Spindle     = Band{Name: "spindle", Low: 8, High: 16, Order: 3, Describe: "thalamocortical spindles"}
	SlowGamma   = Band{Name: "slowgamma", Low: 25, High: 50, Order: 3, Describe: "CA3-driven gamma"}
	MediumGamma = Band{Name: "mediumgamma", Low: 60, High: 90, Order: 3, Describe: "entorhinal gamma"}
	FastGamma   = Band{Name: "fastgamma", Low: 100, High: 140, Order: 3, Describe: "local fast gamma"}
	Ripple      = Band{Name: "ripple", Low: 150, High: 240, Order: 3, Describe: "sharp-wave ripples"}
)

var bands = map[string]Band{}

func init() {
	for _, b := range []Band{Delta, Theta, Spindle, SlowGamma, MediumGamma, FastGamma, Ripple} {
		bands[b.Name] = b
	}
}

// Lookup returns the named band.
func Lookup(name string) (Band, error) {
	b, ok := bands[name]
	if !ok {
		return Band{}, fmt.Errorf("zerophase: unknown band %q", name)
	}

	return b, nil
}

// Bands returns every known band sorted by low edge.
func Bands() []Band {
	out := make([]Band, 0, len(bands))
	for _, b := range bands {
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Low < out[j].Low })

	return out
}

// Filter band-passes x to b at sample rate fs; fs <= 0 selects
// DefaultSampleRate.
func (b Band) Filter(x []float64, fs float64) ([]float64, error) {
	if fs <= 0 {
		fs = DefaultSampleRate
	}

	order := b.Order
	if order <= 0 {
		order = 3
	}

	return Bandpass(x, b.Low, b.High, fs, order)
}

// String renders the band as "theta [4, 10] Hz".
func (b Band) String() string {
	return fmt.Sprintf("%s [%g, %g] Hz", b.Name, b.Low, b.High)
}
