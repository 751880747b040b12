package smooth

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Smoother evaluates a natural cubic spline fitted through a thinned
// subset of the input samples. Immutable once constructed.
type Smoother struct {
	spline interp.NaturalCubic
	xMin   float64
	xMax   float64
}

// New fits a Smoother through numKnots samples of (xs, ys).
//
// xs must be strictly increasing and the same length as ys. numKnots
// must be at least 4 (fewer points cannot support the cubic basis) and
// at most len(xs) (more knots than data duplicates information).
func New(xs, ys []float64, numKnots int) (*Smoother, error) {
	if err := validate(len(xs), len(ys), numKnots); err != nil {
		return nil, err
	}

	idx := KnotIndices(len(xs), numKnots)

	knotXs := make([]float64, numKnots)
	knotYs := make([]float64, numKnots)
	for i, j := range idx {
		knotXs[i] = xs[j]
		knotYs[i] = ys[j]
	}

	s := &Smoother{xMin: knotXs[0], xMax: knotXs[numKnots-1]}
	if err := s.spline.Fit(knotXs, knotYs); err != nil {
		return nil, fmt.Errorf("smooth: spline fit: %w", err)
	}

	return s, nil
}

// Value returns the interpolated value at x. Evaluation outside
// [xs[0], xs[len(xs)-1]] is unsupported.
func (s *Smoother) Value(x float64) float64 {
	return s.spline.Predict(x)
}

// Domain returns the x range covered by the fitted spline.
func (s *Smoother) Domain() (lo, hi float64) {
	return s.xMin, s.xMax
}

// KnotIndices returns the numKnots sample indices used as spline knots
// for a series of length n. The first and last samples are always
// knots; the remaining numKnots-2 sit at approximately even spacing,
// centered within the index range:
//
//	spacing = (n-1) / (numKnots-1)
//	offset  = (n-1 - (numKnots-1)*spacing) / 2
//
// with interior knot i (1-based) at offset + i*spacing. The result is
// strictly increasing. Assumes 2 <= numKnots <= n.
func KnotIndices(n, numKnots int) []int {
	spacing := (n - 1) / (numKnots - 1)
	offset := (n - 1 - (numKnots-1)*spacing) / 2

	idx := make([]int, numKnots)
	idx[0] = 0
	idx[numKnots-1] = n - 1
	for i := 1; i < numKnots-1; i++ {
		idx[i] = offset + i*spacing
	}

	return idx
}
