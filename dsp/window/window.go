// Package window generates the tapers used by spectral estimators:
// cosine-family windows, Tukey and Gaussian windows, and discrete prolate
// spheroidal sequences (Slepian tapers) for multitaper estimates.
//
// Windows are symmetric by default. WithPeriodic selects the DFT-even form
// used for spectral analysis, where the window of length N is the first N
// samples of a symmetric window of length N+1.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeTukey
	TypeGaussian
)

var typeNames = map[Type]string{
	TypeRectangular: "boxcar",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
	TypeTukey:       "tukey",
	TypeGaussian:    "gaussian",
}

// String returns the conventional lower-case window name.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}

	return "unknown"
}

// Parse maps a window name ("hann", "tukey", ...) back to its Type.
func Parse(name string) (Type, bool) {
	for t, s := range typeNames {
		if s == name {
			return t, true
		}
	}

	return 0, false
}

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
}

func defaultConfig() config {
	return config{alpha: 0.5}
}

// WithAlpha sets the shape parameter: the taper fraction for Tukey and the
// standard deviation in samples for Gaussian.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic selects the periodic (DFT-even) form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if length == 1 {
		return []float64{1}
	}

	span := length - 1
	if cfg.periodic {
		span = length
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, i, span, cfg.alpha)
	}

	return out
}

// Apply multiplies buf in place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHann, size, opts...), validateLength(size)
}

// Hamming returns Hamming window coefficients.
func Hamming(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHamming, size, opts...), validateLength(size)
}

// Tukey returns a tapered cosine window; alpha is the tapered fraction.
func Tukey(size int, alpha float64, opts ...Option) ([]float64, error) {
	if err := validateTukey(size, alpha); err != nil {
		return nil, err
	}

	return Generate(TypeTukey, size, append(opts, WithAlpha(alpha))...), nil
}

// Gaussian returns exp(-n^2 / (2 std^2)) centred on the window, with std in
// samples.
func Gaussian(size int, std float64, opts ...Option) ([]float64, error) {
	if err := validateGaussian(size, std); err != nil {
		return nil, err
	}

	return Generate(TypeGaussian, size, append(opts, WithAlpha(std))...), nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := vecmath.Sum(coeffs)
	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * vecmath.DotProduct(coeffs, coeffs) / (sum * sum), nil
}

// ApplyCoefficients multiplies samples with coefficients into a new slice.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errMismatchedLength
	}

	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)

	return out, nil
}

func evalWindow(t Type, n, span int, alpha float64) float64 {
	x := float64(n) / float64(span)

	switch t {
	case TypeRectangular:
		return 1
	case TypeHann:
		return cosineSum(x, hannCoeffs)
	case TypeHamming:
		return cosineSum(x, hammingCoeffs)
	case TypeBlackman:
		return cosineSum(x, blackmanCoeffs)
	case TypeTukey:
		return tukeyAt(x, alpha)
	case TypeGaussian:
		if alpha <= 0 {
			return 1
		}

		d := float64(n) - float64(span)/2

		return math.Exp(-d * d / (2 * alpha * alpha))
	default:
		return 1
	}
}

func cosineSum(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return cosineSum(x, hannCoeffs)
	}

	a := alpha / 2

	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
