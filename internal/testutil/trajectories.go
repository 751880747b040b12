package testutil

import "math/rand"

// GaussianSeries generates a zero-mean Gaussian series with the given
// fluctuation scale and a fixed seed for reproducibility.
func GaussianSeries(seed int64, scale float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = scale * rng.NormFloat64()
	}
	return out
}

// Ramp generates a linear series value[i] = offset + slope*i.
func Ramp(offset, slope float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = offset + slope*float64(i)
	}
	return out
}

// Constant generates a constant-valued series.
func Constant(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// WithJump returns a copy of series with delta added at index pos,
// modeling a tracking discontinuity. The input is left untouched.
func WithJump(series []float64, pos int, delta float64) []float64 {
	out := append([]float64(nil), series...)
	if pos >= 0 && pos < len(out) {
		out[pos] += delta
	}
	return out
}
