package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestResponse_DCMatchesDCGain(t *testing.T) {
	c := smoother()
	h := c.Response(0, 1000)

	if !almostEqual(real(h), c.DCGain(), eps) || math.Abs(imag(h)) > eps {
		t.Fatalf("H(0) = %v, want %v", h, c.DCGain())
	}
}

func TestChain_ResponseIsProduct(t *testing.T) {
	coeffs := twoSections()
	chain := NewChain(coeffs, WithGain(3))

	want := 3 * coeffs[0].Response(100, 1000) * coeffs[1].Response(100, 1000)
	got := chain.Response(100, 1000)

	if cmplx.Abs(got-want) > eps {
		t.Fatalf("response %v, want %v", got, want)
	}

	if !almostEqual(chain.MagnitudeDB(100, 1000), 20*math.Log10(cmplx.Abs(want)), 1e-9) {
		t.Fatal("MagnitudeDB disagrees with Response")
	}
}

func TestChain_ImpulseResponsePreservesState(t *testing.T) {
	chain := NewChain(twoSections())
	chain.ProcessSample(1)
	before := chain.State()

	ir := chain.ImpulseResponse(16)
	if len(ir) != 16 {
		t.Fatalf("len = %d", len(ir))
	}

	after := chain.State()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("section %d state changed", i)
		}
	}

	if chain.ImpulseResponse(0) != nil {
		t.Fatal("expected nil for n=0")
	}
}
