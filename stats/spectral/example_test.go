package spectral_test

import (
	"fmt"

	"github.com/cwbudde/algo-ephys/stats/spectral"
)

func ExampleCalculate() {
	freqs := []float64{0, 1, 2, 3, 4}
	psd := []float64{0, 1, 2, 1, 0}

	s, _ := spectral.Calculate(freqs, psd)
	fmt.Printf("peak=%.0f centroid=%.0f rolloff=%.0f\n", s.PeakFreq, s.Centroid, s.Rolloff)

	// Output:
	// peak=2 centroid=2 rolloff=3
}
