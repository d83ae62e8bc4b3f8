package fftutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func TestNextFastLen(t *testing.T) {
	cases := map[int]int{
		0:    1,
		1:    1,
		5:    5,
		7:    8,
		11:   12,
		13:   15,
		17:   18,
		97:   100,
		1000: 1000,
		1001: 1024,
		5001: 5120,
	}
	for in, want := range cases {
		if got := NextFastLen(in); got != want {
			t.Errorf("NextFastLen(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNextPowerOf2(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{0, 1}, {1, 1}, {2, 2}, {3, 4}, {1025, 2048}} {
		if got := NextPowerOf2(tc.in); got != tc.want {
			t.Errorf("NextPowerOf2(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestForwardInverseRoundTrip(t *testing.T) {
	for _, n := range []int{8, 12, 64, 100} {
		x := testutil.DeterministicNoise(int64(n), 1, n)

		X, err := RealForward(x)
		if err != nil {
			t.Fatalf("n=%d forward: %v", n, err)
		}

		y, err := Inverse(X)
		if err != nil {
			t.Fatalf("n=%d inverse: %v", n, err)
		}

		for i := range x {
			if math.Abs(real(y[i])-x[i]) > 1e-9 || math.Abs(imag(y[i])) > 1e-9 {
				t.Fatalf("n=%d sample %d: got %v, want %v", n, i, y[i], x[i])
			}
		}
	}
}

func TestForwardSineBin(t *testing.T) {
	const n = 60

	x := testutil.DeterministicSine(5, n, 1, n)

	X, err := RealForward(x)
	if err != nil {
		t.Fatal(err)
	}

	if got := cmplx.Abs(X[5]); math.Abs(got-n/2) > 1e-9 {
		t.Fatalf("|X[5]| = %v, want %v", got, n/2)
	}
}

func TestInverseOneSided(t *testing.T) {
	for _, n := range []int{16, 15} {
		x := testutil.DeterministicNoise(3, 1, n)

		X, err := RealForward(x)
		if err != nil {
			t.Fatal(err)
		}

		y, err := InverseOneSided(OneSided(X), n)
		if err != nil {
			t.Fatal(err)
		}

		testutil.RequireSliceNearlyEqual(t, y, x, 1e-9)
	}
}

func TestRFFTFreq(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, RFFTFreq(8, 0.125), []float64{0, 1, 2, 3, 4}, 1e-12)
}

func TestForwardEmpty(t *testing.T) {
	if _, err := Forward(nil); err != ErrEmptyInput {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}
