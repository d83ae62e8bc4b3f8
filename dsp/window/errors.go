package window

import (
	"errors"
	"fmt"
)

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errMismatchedLength = errors.New("samples and coefficients must have same length")

	// ErrTaperCount is returned when more Slepian tapers are requested than
	// the window length allows.
	ErrTaperCount = errors.New("window: taper count must be in [1, M]")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}

	return nil
}

func validateTukey(size int, alpha float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if alpha < 0 || alpha > 1 {
		return fmt.Errorf("tukey alpha must be in [0,1]: %f", alpha)
	}

	return nil
}

func validateGaussian(size int, std float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if std <= 0 {
		return fmt.Errorf("gaussian std must be > 0: %f", std)
	}

	return nil
}

func validateDPSS(size int, nw float64, kmax int) error {
	if size <= 0 {
		return validateLength(size)
	}

	if nw <= 0 || nw >= float64(size)/2 {
		return fmt.Errorf("dpss NW must be in (0, M/2): %f", nw)
	}

	if kmax < 1 || kmax > size {
		return fmt.Errorf("%w: %d", ErrTaperCount, kmax)
	}

	return nil
}
