package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-ephys/dsp/conv"
)

func ExampleConvolve() {
	signal := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	smoothed, _ := conv.Convolve(signal, kernel, conv.ModeSame)
	fmt.Printf("%.2f\n", smoothed)
	// Output: [1.00 2.00 3.00 4.00 4.50 4.00 3.00 2.00 1.00]
}
