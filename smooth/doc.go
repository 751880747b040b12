// Package smooth fits a smooth reference curve through a time series
// using a natural cubic spline over a thinned set of knots.
//
// The knots are a deterministic, approximately evenly spaced subsample
// of the input; both endpoints are always knots because the spline
// cannot extrapolate. The fitted curve serves as the "expected
// trajectory" that residuals are measured against in measure/tram.
package smooth
