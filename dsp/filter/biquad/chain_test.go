package biquad

import (
	"testing"
)

func twoSections() []Coefficients {
	return []Coefficients{
		smoother(),
		{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1},
	}
}

func TestChain_MatchesManualCascade(t *testing.T) {
	coeffs := twoSections()
	chain := NewChain(coeffs, WithGain(2))
	s1 := NewSection(coeffs[0])
	s2 := NewSection(coeffs[1])

	for i, x := range []float64{1, 0, -1, 0.5, 0.25, 0, 0, 2} {
		want := s2.ProcessSample(s1.ProcessSample(2 * x))
		if got := chain.ProcessSample(x); !almostEqual(got, want, eps) {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
	}
}

func TestChain_FilterMatchesProcessSample(t *testing.T) {
	in := []float64{0.3, -1, 2, 0, 0, 1, 1, 1}

	ref := NewChain(twoSections())
	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = ref.ProcessSample(x)
	}

	got := NewChain(twoSections()).Filter(in)
	for i := range got {
		if !almostEqual(got[i], want[i], eps) {
			t.Fatalf("index %d: %v vs %v", i, got[i], want[i])
		}
	}

	if in[0] != 0.3 {
		t.Fatal("Filter modified its input")
	}
}

func TestChain_Order(t *testing.T) {
	c := NewChain([]Coefficients{smoother(), {B0: 0.5, B1: 0.5, A1: -0.1}})
	if c.Order() != 3 || c.NumSections() != 2 {
		t.Fatalf("order %d, sections %d", c.Order(), c.NumSections())
	}
}

func TestChain_SteadyState(t *testing.T) {
	chain := NewChain(twoSections(), WithGain(0.5))
	chain.SetSteadyState(3)

	want := 0.5 * 3
	for _, c := range twoSections() {
		want *= c.DCGain()
	}

	for i := range 40 {
		if y := chain.ProcessSample(3); !almostEqual(y, want, 1e-11) {
			t.Fatalf("sample %d: got %v, want %v", i, y, want)
		}
	}
}

func TestChain_CoefficientsCopy(t *testing.T) {
	chain := NewChain(twoSections())
	cs := chain.Coefficients()
	cs[0].B0 = 99

	if chain.Section(0).B0 == 99 {
		t.Fatal("Coefficients returned an alias")
	}
}
