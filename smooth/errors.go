package smooth

import (
	"errors"
	"fmt"
)

var (
	// ErrMismatchedLength reports xs and ys of differing lengths.
	ErrMismatchedLength = errors.New("smooth: xs and ys must have the same length")
	// ErrTooFewKnots reports a knot count below the cubic minimum of 4.
	ErrTooFewKnots = errors.New("smooth: must have at least 4 knots")
	// ErrTooManyKnots reports a knot count exceeding the sample count.
	ErrTooManyKnots = errors.New("smooth: numKnots must not exceed the number of samples")
)

func validate(nx, ny, numKnots int) error {
	if nx != ny {
		return fmt.Errorf("%w: %d vs %d", ErrMismatchedLength, nx, ny)
	}
	if numKnots < 4 {
		return fmt.Errorf("%w: %d", ErrTooFewKnots, numKnots)
	}
	if numKnots > nx {
		return fmt.Errorf("%w: %d knots for %d samples", ErrTooManyKnots, numKnots, nx)
	}
	return nil
}
