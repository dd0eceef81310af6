// Package testkit provides seeded sample generators for exercising the
// validation engine: exact-distribution draws from a reference PDT,
// deterministic frequency replays, and multivariate fixtures including the
// degenerate (collinear) case.
package testkit

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"saga/domain/gaussian"
)

// PDTSampler draws integers from a reference table by inversion sampling
// of its cumulative distribution. Because the draws follow the truncated,
// renormalized table exactly, a correct validator must accept them.
type PDTSampler struct {
	pdt *gaussian.PDT
	cdf []float64
	rng *rand.Rand
}

// NewPDTSampler builds a seeded sampler over the given reference table.
func NewPDTSampler(pdt *gaussian.PDT, seed int64) *PDTSampler {
	probs := pdt.Probabilities()
	cdf := make([]float64, len(probs))
	acc := 0.0
	for i, p := range probs {
		acc += p
		cdf[i] = acc
	}
	cdf[len(cdf)-1] = 1 // guard against rounding drift
	return &PDTSampler{pdt: pdt, cdf: cdf, rng: rand.New(rand.NewSource(seed))}
}

// Draw samples one integer from the table.
func (s *PDTSampler) Draw() int64 {
	u := s.rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.cdf) {
		idx = len(s.cdf) - 1
	}
	return s.pdt.Min() + int64(idx)
}

// DrawN samples n integers from the table.
func (s *PDTSampler) DrawN(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = s.Draw()
	}
	return out
}

// Replay deterministically expands the table into a sample sequence where
// each support value appears round(p*n) times. The empirical histogram then
// matches the expected counts as closely as integers allow, so the
// chi-square statistic is near zero regardless of any randomness.
func Replay(pdt *gaussian.PDT, n int) []int64 {
	var out []int64
	for z := pdt.Min(); z < pdt.Max(); z++ {
		count := int(math.Round(pdt.Prob(z) * float64(n)))
		for i := 0; i < count; i++ {
			out = append(out, z)
		}
	}
	return out
}

// Shift returns a copy of samples with a constant bias added, for
// exercising rejection of mis-centered samplers.
func Shift(samples []int64, bias int64) []int64 {
	out := make([]int64, len(samples))
	for i, z := range samples {
		out[i] = z + bias
	}
	return out
}

// GaussianVectors draws n vectors of dimension d whose coordinates are
// i.i.d. samples from the discrete Gaussian D_Z(0, sigma).
func GaussianVectors(sigma float64, n, d int, seed int64, cfg gaussian.Config) ([][]float64, error) {
	pdt, err := gaussian.NewPDT(0, sigma, cfg)
	if err != nil {
		return nil, err
	}
	s := NewPDTSampler(pdt, seed)
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, d)
		for j := range row {
			row[j] = float64(s.Draw())
		}
		out[i] = row
	}
	return out, nil
}

// Source is a deterministic in-memory sample source drawing from a
// reference table, for exercising orchestration code without a real
// sampler behind it.
type Source struct {
	name string
	seed int64
	cfg  gaussian.Config
}

// NewSource builds a seeded source with the given display name.
func NewSource(name string, seed int64, cfg gaussian.Config) *Source {
	return &Source{name: name, seed: seed, cfg: cfg}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Univariate(_ context.Context, center, sigma float64, n int) ([]int64, error) {
	pdt, err := gaussian.NewPDT(center, sigma, s.cfg)
	if err != nil {
		return nil, err
	}
	return NewPDTSampler(pdt, s.seed).DrawN(n), nil
}

func (s *Source) Multivariate(_ context.Context, sigma float64, n, dim int) ([][]float64, error) {
	return GaussianVectors(sigma, n, dim, s.seed, s.cfg)
}

// CollinearVectors draws Gaussian vectors and then copies coordinate 0
// into coordinate 1, producing an exactly rank-deficient correlation
// matrix for degenerate-case tests.
func CollinearVectors(sigma float64, n, d int, seed int64, cfg gaussian.Config) ([][]float64, error) {
	vectors, err := GaussianVectors(sigma, n, d, seed, cfg)
	if err != nil {
		return nil, err
	}
	for _, v := range vectors {
		v[1] = v[0]
	}
	return vectors, nil
}
