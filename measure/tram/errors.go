package tram

import "errors"

var (
	// ErrBadKnotCount reports a knot count below the cubic minimum of 4.
	ErrBadKnotCount = errors.New("tram: must have at least 4 knots")
	// ErrBadExponent reports a non-positive aggregation exponent.
	ErrBadExponent = errors.New("tram: exponent must be positive")

	// ErrScaleUnavailable reports a residual computation for a feature
	// without a fluctuation scale. The caller must filter trajectory
	// features to AvailableFeatures before computing; hitting this is a
	// defect, not an input-data condition.
	ErrScaleUnavailable = errors.New("tram: no fluctuation scale for feature")
	// ErrChannelMismatch reports a violation of the structural invariant
	// that exactly the channels carrying residual data receive a weight.
	// The grouping step makes the invariant true by construction, so
	// hitting this is a defect.
	ErrChannelMismatch = errors.New("tram: weight/residual channel mismatch")
)
