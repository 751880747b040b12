package tram

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tram/smooth"
)

// Calculator computes the TrAM statistic for single trajectories.
// Immutable after construction; safe for use from multiple goroutines.
type Calculator struct {
	scaleByFeature map[string]float64
	numKnots       int
	p              float64
}

// NewCalculator creates a TrAM calculator.
//
// scaleByFeature maps each feature name to its typical point-to-point
// fluctuation magnitude (see robust.MedianAbsoluteDifferenceByFeature).
// The mapping is copied; features with a scale of exactly zero carry no
// usable variability and are dropped permanently. numKnots is the knot
// count for the smoothing spline, p the power-mean exponent (typically
// in (0, 1]; small p is dominated by the largest channel, p = 1 is a
// plain weighted average).
func NewCalculator(scaleByFeature map[string]float64, numKnots int, p float64) (*Calculator, error) {
	if numKnots < 4 {
		return nil, fmt.Errorf("%w: %d", ErrBadKnotCount, numKnots)
	}
	if !(p > 0) {
		return nil, fmt.Errorf("%w: %g", ErrBadExponent, p)
	}

	scales := make(map[string]float64, len(scaleByFeature))
	for name, scale := range scaleByFeature {
		if scale == 0 {
			continue
		}
		scales[name] = scale
	}

	return &Calculator{scaleByFeature: scales, numKnots: numKnots, p: p}, nil
}

// AvailableFeatures returns the sorted feature names with a usable
// fluctuation scale. Trajectories passed to Compute must be restricted
// to these features.
func (c *Calculator) AvailableFeatures() []string {
	names := make([]string, 0, len(c.scaleByFeature))
	for name := range c.scaleByFeature {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// IsNotComputable reports whether score is the sentinel returned for
// trajectories too short to support the configured spline.
func IsNotComputable(score float64) bool {
	return math.IsNaN(score)
}

// Compute returns the TrAM statistic for one trajectory.
//
// seriesByFeature holds one time series per feature; all series are
// assumed to share the same length. groups optionally names sets of
// features whose normalized residuals are combined per timepoint as a
// root mean square before aggregation (the combined channel is weighted
// by its member count). groups may be nil.
//
// Trajectories shorter than the knot count return NaN with a nil
// error; this is a defined outcome, not a failure (see IsNotComputable).
// ErrScaleUnavailable and ErrChannelMismatch indicate internal
// inconsistencies and abort only the current trajectory. Inputs are
// never mutated.
func (c *Calculator) Compute(seriesByFeature map[string][]float64, groups map[string][]string) (float64, error) {
	length := 0
	for _, vals := range seriesByFeature {
		length = len(vals)
		break
	}
	if length < c.numKnots {
		return math.NaN(), nil
	}

	residuals, err := c.normalizedResiduals(seriesByFeature, length)
	if err != nil {
		return 0, err
	}

	channels, weights, err := combineChannels(residuals, groups, len(seriesByFeature), length)
	if err != nil {
		return 0, err
	}

	if err := checkChannels(channels, weights); err != nil {
		return 0, err
	}

	return maxPowerMean(channels, weights, length, c.p), nil
}

// normalizedResiduals computes, per feature, the absolute deviation of
// the raw series from its spline fit, divided by the feature's
// fluctuation scale.
func (c *Calculator) normalizedResiduals(seriesByFeature map[string][]float64, length int) (map[string][]float64, error) {
	xs := make([]float64, length)
	for i := range xs {
		xs[i] = float64(i)
	}

	out := make(map[string][]float64, len(seriesByFeature))
	for name, vals := range seriesByFeature {
		scale, ok := c.scaleByFeature[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrScaleUnavailable, name)
		}

		s, err := smooth.New(xs, vals, c.numKnots)
		if err != nil {
			return nil, fmt.Errorf("tram: feature %q: %w", name, err)
		}

		res := make([]float64, length)
		for i, v := range vals {
			res[i] = math.Abs(v-s.Value(xs[i])) / scale
		}
		out[name] = res
	}

	return out, nil
}

// combineChannels produces the final channel set in one pass: each
// group becomes a single RMS-combined channel carrying the weight of
// its member count, every unclaimed feature keeps weight 1, and all
// weights are normalized by the original feature count so they sum
// to 1. Fresh maps are returned; residuals is left untouched.
func combineChannels(residuals map[string][]float64, groups map[string][]string, numFeatures, length int) (map[string][]float64, map[string]float64, error) {
	channels := make(map[string][]float64, len(residuals))
	weights := make(map[string]float64, len(residuals))
	total := float64(numFeatures)

	claimed := make(map[string]bool, len(residuals))
	for groupName, members := range groups {
		data := make([][]float64, len(members))
		for i, member := range members {
			res, ok := residuals[member]
			if !ok {
				return nil, nil, fmt.Errorf("%w: group %q member %q has no residual data", ErrChannelMismatch, groupName, member)
			}
			if claimed[member] {
				return nil, nil, fmt.Errorf("%w: feature %q claimed by more than one group", ErrChannelMismatch, member)
			}
			claimed[member] = true
			data[i] = res
		}
		channels[groupName] = rmsAcross(data, length)
		weights[groupName] = float64(len(members)) / total
	}

	for name, res := range residuals {
		if claimed[name] {
			continue
		}
		if _, exists := channels[name]; exists {
			return nil, nil, fmt.Errorf("%w: group name %q collides with feature name", ErrChannelMismatch, name)
		}
		channels[name] = res
		weights[name] = 1 / total
	}

	return channels, weights, nil
}

// rmsAcross combines member residual series into one channel holding,
// per timepoint, the root mean square across members. The two-member
// case (the common x/y position group) runs on the SIMD magnitude
// kernel.
func rmsAcross(members [][]float64, length int) []float64 {
	out := make([]float64, length)

	if len(members) == 2 {
		vecmath.Magnitude(out, members[0], members[1])
		inv := 1 / math.Sqrt2
		for i := range out {
			out[i] *= inv
		}
		return out
	}

	inv := 1 / float64(len(members))
	for t := range out {
		var sumSq float64
		for _, m := range members {
			sumSq += m[t] * m[t]
		}
		out[t] = math.Sqrt(sumSq * inv)
	}

	return out
}

// checkChannels asserts that the weighted channel set and the residual
// channel set coincide. combineChannels makes this true by
// construction; a violation signals a defect.
func checkChannels(channels map[string][]float64, weights map[string]float64) error {
	if len(channels) != len(weights) {
		return fmt.Errorf("%w: %d channels, %d weights", ErrChannelMismatch, len(channels), len(weights))
	}
	for name := range channels {
		if _, ok := weights[name]; !ok {
			return fmt.Errorf("%w: channel %q has no weight", ErrChannelMismatch, name)
		}
	}

	return nil
}

// maxPowerMean aggregates the channels at each timepoint with a
// weighted power mean, (sum_i w_i * r_i^p)^(1/p), and returns the
// maximum over all timepoints. Channels are visited in sorted name
// order so the summation order is deterministic.
func maxPowerMean(channels map[string][]float64, weights map[string]float64, length int, p float64) float64 {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)

	w := make([]float64, len(names))
	data := make([][]float64, len(names))
	for i, name := range names {
		w[i] = weights[name]
		data[i] = channels[name]
	}

	best := math.Inf(-1)
	for t := 0; t < length; t++ {
		var sum float64
		for i := range data {
			sum += w[i] * math.Pow(data[i][t], p)
		}
		if v := math.Pow(sum, 1/p); v > best {
			best = v
		}
	}

	return best
}
