// Package robust provides outlier-resistant fluctuation-scale
// estimators for trajectory time series.
package robust

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoSeries reports a scale estimation over zero series.
var ErrNoSeries = errors.New("robust: must have at least one series")

// MedianAbsoluteDifference pools the absolute differences between
// adjacent samples, |v[i+1]-v[i]|, across all given series and returns
// the median of the pool. The median of adjacent differences, unlike a
// standard deviation, is not dominated by the rare large jumps this
// estimator exists to detect.
//
// Returns NaN when no series contributes a difference (all series
// shorter than 2 samples).
func MedianAbsoluteDifference(series [][]float64) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("%w", ErrNoSeries)
	}

	var pool []float64
	for _, vals := range series {
		for i := 0; i+1 < len(vals); i++ {
			pool = append(pool, math.Abs(vals[i+1]-vals[i]))
		}
	}

	return median(pool), nil
}

// MedianAbsoluteDifferenceByFeature groups all series of a trajectory
// corpus by feature name and computes MedianAbsoluteDifference per
// feature. The result is suitable as the scale mapping for a
// tram.Calculator.
func MedianAbsoluteDifferenceByFeature(corpus []map[string][]float64) map[string]float64 {
	byFeature := make(map[string][][]float64)
	for _, trajectory := range corpus {
		for name, vals := range trajectory {
			byFeature[name] = append(byFeature[name], vals)
		}
	}

	scales := make(map[string]float64, len(byFeature))
	for name, series := range byFeature {
		// series is nonempty by construction, so the error path is
		// unreachable here.
		scale, _ := MedianAbsoluteDifference(series)
		scales[name] = scale
	}

	return scales
}

// median returns the midpoint median of xs, leaving xs untouched.
// Returns NaN for an empty slice.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)

	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}

	return 0.5 * (cp[mid-1] + cp[mid])
}
