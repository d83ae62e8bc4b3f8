package butter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrder is returned for non-positive filter orders.
	ErrInvalidOrder = errors.New("butter: order must be > 0")
	// ErrInvalidCutoff is returned for edge frequencies outside (0, fs/2).
	ErrInvalidCutoff = errors.New("butter: cutoff must lie in (0, fs/2)")
	// ErrInvalidBand is returned when the low edge is not below the high edge.
	ErrInvalidBand = errors.New("butter: low edge must be below high edge")
)

func validate(order int, fs float64, cutoffs ...float64) error {
	if order <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}

	for _, f := range cutoffs {
		if fs <= 0 || f <= 0 || f >= fs/2 {
			return fmt.Errorf("%w: %g Hz at fs=%g", ErrInvalidCutoff, f, fs)
		}
	}

	return nil
}
