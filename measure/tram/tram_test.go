package tram

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-tram/internal/testutil"
)

func mustCalculator(t *testing.T, scales map[string]float64, numKnots int, p float64) *Calculator {
	t.Helper()
	c, err := NewCalculator(scales, numKnots, p)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewCalculatorValidation(t *testing.T) {
	scales := map[string]float64{"x": 1}

	if _, err := NewCalculator(scales, 3, 0.5); !errors.Is(err, ErrBadKnotCount) {
		t.Fatalf("knot count: got %v", err)
	}
	if _, err := NewCalculator(scales, 4, 0); !errors.Is(err, ErrBadExponent) {
		t.Fatalf("zero exponent: got %v", err)
	}
	if _, err := NewCalculator(scales, 4, -0.5); !errors.Is(err, ErrBadExponent) {
		t.Fatalf("negative exponent: got %v", err)
	}
}

func TestZeroScaleFeatureExcluded(t *testing.T) {
	c := mustCalculator(t, map[string]float64{"x": 1, "flat": 0, "y": 2}, 4, 0.5)

	got := c.AvailableFeatures()
	want := []string{"x", "y"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("available features: got %v, want %v", got, want)
	}
}

func TestScaleMapCopied(t *testing.T) {
	scales := map[string]float64{"x": 1}
	c := mustCalculator(t, scales, 4, 0.5)

	scales["y"] = 3
	delete(scales, "x")

	got := c.AvailableFeatures()
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("calculator shares caller map: %v", got)
	}
}

func TestShortSeriesNotComputable(t *testing.T) {
	c := mustCalculator(t, map[string]float64{"x": 1}, 4, 0.5)

	score, err := c.Compute(map[string][]float64{"x": {1, 2, 3}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !IsNotComputable(score) {
		t.Fatalf("short series: got %v, want NaN", score)
	}

	// An empty trajectory is the degenerate too-short case.
	score, err = c.Compute(map[string][]float64{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !IsNotComputable(score) {
		t.Fatalf("empty trajectory: got %v, want NaN", score)
	}
}

func TestSmoothTrajectoryScoresZero(t *testing.T) {
	c := mustCalculator(t, map[string]float64{"x": 1, "y": 1}, 4, 0.5)

	trajectory := map[string][]float64{
		"x": testutil.Ramp(0, 1, 10),
		"y": testutil.Constant(0, 10),
	}

	score, err := c.Compute(trajectory, nil)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNear(t, score, 0, 1e-6)

	// The exponent must not matter when all residuals vanish.
	for _, p := range []float64{0.25, 1, 2} {
		cp := mustCalculator(t, map[string]float64{"x": 1, "y": 1}, 4, p)
		score, err := cp.Compute(trajectory, nil)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireNear(t, score, 0, 1e-6)
	}
}

func TestOutlierDominates(t *testing.T) {
	c := mustCalculator(t, map[string]float64{"x": 1, "y": 1}, 4, 0.5)

	clean := map[string][]float64{
		"x": testutil.Ramp(0, 1, 10),
		"y": testutil.Constant(0, 10),
	}
	spiked := map[string][]float64{
		// Index 5 is not a knot for n=10, k=4, so the spline stays on
		// the line and the full +100 shows up as residual.
		"x": testutil.WithJump(clean["x"], 5, 100),
		"y": clean["y"],
	}

	cleanScore, err := c.Compute(clean, nil)
	if err != nil {
		t.Fatal(err)
	}
	spikedScore, err := c.Compute(spiked, nil)
	if err != nil {
		t.Fatal(err)
	}

	if spikedScore <= cleanScore {
		t.Fatalf("spiked %v not greater than clean %v", spikedScore, cleanScore)
	}
	// stat[5] = (0.5*100^0.5 + 0.5*0^0.5)^2 = 25.
	testutil.RequireNear(t, spikedScore, 25, 1e-4)
}

func TestUnknownFeatureIsInternalError(t *testing.T) {
	c := mustCalculator(t, map[string]float64{"x": 1}, 4, 0.5)

	trajectory := map[string][]float64{
		"x": testutil.Ramp(0, 1, 10),
		"z": testutil.Ramp(0, 2, 10),
	}

	if _, err := c.Compute(trajectory, nil); !errors.Is(err, ErrScaleUnavailable) {
		t.Fatalf("unknown feature: got %v, want ErrScaleUnavailable", err)
	}
}

func TestGroupedEqualsSingleForIdenticalMembers(t *testing.T) {
	series := testutil.WithJump(testutil.GaussianSeries(3, 1, 20), 11, 8)

	single := mustCalculator(t, map[string]float64{"a": 1}, 4, 0.5)
	singleScore, err := single.Compute(map[string][]float64{"a": series}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// RMS of k identical residual series equals any one of them, and a
	// group spanning every feature carries the whole weight, so the
	// grouped score must match the single-feature score.
	for _, k := range []int{2, 3} {
		trajectory := make(map[string][]float64, k)
		members := make([]string, k)
		scales := make(map[string]float64, k)
		names := []string{"a", "b", "c"}
		for i := 0; i < k; i++ {
			trajectory[names[i]] = series
			members[i] = names[i]
			scales[names[i]] = 1
		}

		grouped := mustCalculator(t, scales, 4, 0.5)
		groupedScore, err := grouped.Compute(trajectory, map[string][]string{"G": members})
		if err != nil {
			t.Fatal(err)
		}

		testutil.RequireNear(t, groupedScore, singleScore, 1e-9)
	}
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	c := mustCalculator(t, map[string]float64{"x": 1, "y": 1, "f": 2}, 4, 0.5)

	x := testutil.Ramp(0, 1, 12)
	y := testutil.GaussianSeries(5, 1, 12)
	f := testutil.GaussianSeries(6, 2, 12)
	trajectory := map[string][]float64{"x": x, "y": y, "f": f}
	groups := map[string][]string{"XY": {"x", "y"}}

	if _, err := c.Compute(trajectory, groups); err != nil {
		t.Fatal(err)
	}

	if len(trajectory) != 3 {
		t.Fatalf("trajectory map mutated: %d entries", len(trajectory))
	}
	testutil.RequireSliceNearlyEqual(t, trajectory["x"], testutil.Ramp(0, 1, 12), 0)
	testutil.RequireSliceNearlyEqual(t, trajectory["y"], testutil.GaussianSeries(5, 1, 12), 0)
	if len(groups["XY"]) != 2 {
		t.Fatalf("groups mutated: %v", groups)
	}
}

func TestCombineChannelsWeights(t *testing.T) {
	residuals := map[string][]float64{
		"x": {1, 2},
		"y": {3, 4},
		"z": {5, 6},
	}

	// Ungrouped: equal weights.
	channels, weights, err := combineChannels(residuals, nil, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(channels) != 3 {
		t.Fatalf("ungrouped channels: got %d, want 3", len(channels))
	}
	for _, w := range weights {
		testutil.RequireNear(t, w, 1.0/3, 1e-15)
	}

	// Grouped: group weight is member count over total features.
	groups := map[string][]string{"XY": {"x", "y"}}
	channels, weights, err = combineChannels(residuals, groups, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(channels) != 2 {
		t.Fatalf("grouped channels: got %d, want 2", len(channels))
	}
	testutil.RequireNear(t, weights["XY"], 2.0/3, 1e-15)
	testutil.RequireNear(t, weights["z"], 1.0/3, 1e-15)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	testutil.RequireNear(t, sum, 1, 1e-12)

	// RMS combination: sqrt((1+9)/2), sqrt((4+16)/2).
	testutil.RequireSliceNearlyEqual(t, channels["XY"], []float64{math.Sqrt(5), math.Sqrt(10)}, 1e-12)
}

func TestCombineChannelsInconsistencies(t *testing.T) {
	residuals := map[string][]float64{"x": {1}, "y": {2}}

	if _, _, err := combineChannels(residuals, map[string][]string{"G": {"x", "missing"}}, 2, 1); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("missing member: got %v", err)
	}
	if _, _, err := combineChannels(residuals, map[string][]string{"G": {"x", "x"}}, 2, 1); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("double claim: got %v", err)
	}
	if _, _, err := combineChannels(residuals, map[string][]string{"y": {"x"}}, 2, 1); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("name collision: got %v", err)
	}
}

func TestMaxPowerMeanClosedForm(t *testing.T) {
	channels := map[string][]float64{
		"a": {2, 2},
		"b": {8, 8},
	}
	weights := map[string]float64{"a": 0.5, "b": 0.5}

	// p = 1: plain weighted average.
	testutil.RequireNear(t, maxPowerMean(channels, weights, 2, 1), 5, 1e-12)
	// p = 0.5: (0.5*sqrt(2) + 0.5*sqrt(8))^2 = 4.5.
	testutil.RequireNear(t, maxPowerMean(channels, weights, 2, 0.5), 4.5, 1e-12)
	// The maximum over time picks the worst timepoint.
	channels["b"] = []float64{8, 50}
	testutil.RequireNear(t, maxPowerMean(channels, weights, 2, 1), 26, 1e-12)
}
