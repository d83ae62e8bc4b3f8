package butter_test

import (
	"fmt"

	"github.com/cwbudde/algo-ephys/dsp/filter/butter"
)

func ExampleBandpass() {
	theta, err := butter.Bandpass(4, 10, 3, 1250)
	if err != nil {
		panic(err)
	}

	fmt.Printf("sections=%d order=%d\n", theta.NumSections(), theta.Order())
	fmt.Printf("4 Hz: %.2f dB\n", theta.MagnitudeDB(4, 1250))
	// Output:
	// sections=3 order=6
	// 4 Hz: -3.01 dB
}
