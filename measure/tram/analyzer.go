package tram

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tram/stats/robust"
)

// Defaults for corpus analysis, from the reference TrAM implementation.
const (
	DefaultNumKnots = 7
	DefaultExponent = 0.5
)

// Analyzer scores a whole trajectory corpus: it estimates per-feature
// fluctuation scales from the corpus, drops features that cannot be
// normalized, and computes one TrAM value per trajectory.
type Analyzer struct {
	numKnots int
	p        float64
	features []string
	groups   map[string][]string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithNumKnots sets the smoothing spline knot count (minimum 4).
func WithNumKnots(numKnots int) Option {
	return func(a *Analyzer) {
		if numKnots >= 4 {
			a.numKnots = numKnots
		}
	}
}

// WithExponent sets the power-mean exponent (must be positive).
func WithExponent(p float64) Option {
	return func(a *Analyzer) {
		if p > 0 {
			a.p = p
		}
	}
}

// WithFeatures restricts the analysis to the named features. Without
// this option every feature present in the corpus participates.
func WithFeatures(names ...string) Option {
	return func(a *Analyzer) {
		a.features = append([]string(nil), names...)
	}
}

// WithGroups sets the Euclidean feature groups applied to every
// trajectory. The mapping is copied.
func WithGroups(groups map[string][]string) Option {
	return func(a *Analyzer) {
		cp := make(map[string][]string, len(groups))
		for name, members := range groups {
			cp[name] = append([]string(nil), members...)
		}
		a.groups = cp
	}
}

// NewAnalyzer creates an Analyzer with the reference defaults
// (7 knots, exponent 0.5, no feature restriction, no groups).
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{numKnots: DefaultNumKnots, p: DefaultExponent}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// Run scores every trajectory in the corpus, returning one value per
// trajectory in input order. Trajectories shorter than the knot count
// score NaN (see IsNotComputable). Fluctuation scales are estimated
// from the corpus itself; callers that keep a separate training corpus
// can use NewCalculator with robust.MedianAbsoluteDifferenceByFeature
// directly.
//
// Features whose estimated scale is zero or undefined are excluded
// from every trajectory, group members without a usable scale are
// pruned, and groups left without members are dropped, so a defect-free
// corpus never trips the internal-consistency errors.
func (a *Analyzer) Run(corpus []map[string][]float64) ([]float64, error) {
	filtered := a.restrict(corpus)

	scales := robust.MedianAbsoluteDifferenceByFeature(filtered)
	for name, scale := range scales {
		if math.IsNaN(scale) {
			delete(scales, name)
		}
	}

	calc, err := NewCalculator(scales, a.numKnots, a.p)
	if err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(scales))
	for _, name := range calc.AvailableFeatures() {
		available[name] = true
	}

	groups := pruneGroups(a.groups, available)

	scores := make([]float64, len(filtered))
	for i, trajectory := range filtered {
		usable := make(map[string][]float64, len(trajectory))
		for name, vals := range trajectory {
			if available[name] {
				usable[name] = vals
			}
		}
		if len(usable) == 0 {
			scores[i] = math.NaN()
			continue
		}

		score, err := calc.Compute(usable, groups)
		if err != nil {
			return nil, fmt.Errorf("tram: trajectory %d: %w", i, err)
		}
		scores[i] = score
	}

	return scores, nil
}

// restrict narrows every trajectory to the selected feature set,
// without mutating the input.
func (a *Analyzer) restrict(corpus []map[string][]float64) []map[string][]float64 {
	if a.features == nil {
		return corpus
	}

	selected := make(map[string]bool, len(a.features))
	for _, name := range a.features {
		selected[name] = true
	}

	out := make([]map[string][]float64, len(corpus))
	for i, trajectory := range corpus {
		cp := make(map[string][]float64, len(a.features))
		for name, vals := range trajectory {
			if selected[name] {
				cp[name] = vals
			}
		}
		out[i] = cp
	}

	return out
}

// pruneGroups removes group members without a usable scale and drops
// groups left empty.
func pruneGroups(groups map[string][]string, available map[string]bool) map[string][]string {
	if len(groups) == 0 {
		return nil
	}

	out := make(map[string][]string, len(groups))
	for name, members := range groups {
		kept := make([]string, 0, len(members))
		for _, member := range members {
			if available[member] {
				kept = append(kept, member)
			}
		}
		if len(kept) > 0 {
			out[name] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}

	return out
}
