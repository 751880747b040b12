// Package tram computes the Tracking Aberration Measure (TrAM), a
// single scalar per tracked trajectory that quantifies how far the
// trajectory strays from a smooth expected path.
//
// TrAM is described in Patsch et al. (2016), "Single cell dynamic
// phenotyping", Scientific Reports 6, 34785. Per feature, the raw
// series is compared against a knot-thinned cubic spline fit; the
// absolute residuals are normalized by a robust per-feature
// fluctuation scale, optionally combined across correlated features
// (e.g. x/y position) as a per-timepoint root mean square, aggregated
// across channels with a weighted power mean, and reduced to the worst
// timepoint.
//
// # Usage
//
// Estimate fluctuation scales from a corpus, then score trajectories:
//
//	scales := robust.MedianAbsoluteDifferenceByFeature(corpus)
//	calc, _ := tram.NewCalculator(scales, 7, 0.5)
//	groups := map[string][]string{"XY": {"x", "y"}}
//	for _, trajectory := range corpus {
//	    score, err := calc.Compute(trajectory, groups)
//	    // score is NaN for trajectories shorter than the knot count
//	}
//
// Or let an Analyzer run the whole corpus workflow:
//
//	scores, err := tram.NewAnalyzer(
//	    tram.WithGroups(map[string][]string{"XY": {"x", "y"}}),
//	).Run(corpus)
//
// A high score flags a trajectory with at least one strongly aberrant
// moment; exponents below 1 reward deviations sustained across several
// channels over a single-channel spike.
package tram
