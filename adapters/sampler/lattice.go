// Package sampler exposes lattice-library discrete Gaussian samplers as
// sample sources, so the validation pipeline can exercise a real sampler
// end to end instead of only parsing captured corpora.
package sampler

import (
	"context"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v4/ring"
	"github.com/tuneinsight/lattigo/v4/utils"

	"saga/domain/gaussian"
	"saga/internal/errors"
)

const (
	// Degree and modulus of the polynomial ring the sampler draws from.
	// 12289 = 3*2^12 + 1 is NTT friendly for any degree up to 2048.
	ringDegree  = 1024
	ringModulus = 12289
)

// LatticeSampler draws discrete Gaussian coefficients from a polynomial
// ring. Coefficients come out reduced mod Q, so values above Q/2 are
// recentered to their negative representatives.
type LatticeSampler struct {
	ringQ *ring.Ring
	prng  utils.PRNG
	cfg   gaussian.Config
}

// NewLatticeSampler builds a sampler backed by a fresh system PRNG.
func NewLatticeSampler(cfg gaussian.Config) (*LatticeSampler, error) {
	prng, err := utils.NewPRNG()
	if err != nil {
		return nil, errors.Wrap(err, "initializing sampler prng")
	}
	return newLatticeSampler(prng, cfg)
}

// NewSeededLatticeSampler builds a deterministic sampler keyed by seed.
// Two samplers with the same seed produce identical draws.
func NewSeededLatticeSampler(seed []byte, cfg gaussian.Config) (*LatticeSampler, error) {
	prng, err := utils.NewKeyedPRNG(seed)
	if err != nil {
		return nil, errors.Wrap(err, "initializing keyed sampler prng")
	}
	return newLatticeSampler(prng, cfg)
}

func newLatticeSampler(prng utils.PRNG, cfg gaussian.Config) (*LatticeSampler, error) {
	ringQ, err := ring.NewRing(ringDegree, []uint64{ringModulus})
	if err != nil {
		return nil, errors.Wrap(err, "constructing sampling ring")
	}
	return &LatticeSampler{ringQ: ringQ, prng: prng, cfg: cfg}, nil
}

// Name implements ports.SampleSource.
func (s *LatticeSampler) Name() string {
	return fmt.Sprintf("lattigo-ring(N=%d,q=%d)", ringDegree, ringModulus)
}

// Univariate implements ports.SampleSource. The ring sampler is centered
// at zero, so only integer centers can be served: the center is applied as
// a constant shift after sampling.
func (s *LatticeSampler) Univariate(ctx context.Context, center, sigma float64, n int) ([]int64, error) {
	if center != math.Trunc(center) {
		return nil, errors.InvalidInput("lattice sampler only supports integer centers")
	}
	stream, err := s.stream(sigma)
	if err != nil {
		return nil, err
	}
	shift := int64(center)
	out := make([]int64, n)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = stream.next() + shift
	}
	return out, nil
}

// Multivariate implements ports.SampleSource.
func (s *LatticeSampler) Multivariate(ctx context.Context, sigma float64, n, dim int) ([][]float64, error) {
	if dim < 1 {
		return nil, errors.InvalidInput("dimension must be positive")
	}
	stream, err := s.stream(sigma)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, n)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec := make([]float64, dim)
		for j := range vec {
			vec[j] = float64(stream.next())
		}
		out[i] = vec
	}
	return out, nil
}

func (s *LatticeSampler) stream(sigma float64) (*coeffStream, error) {
	if sigma <= 0 {
		return nil, errors.InvalidInput("sigma must be positive")
	}
	bound := int(math.Ceil(s.cfg.TailCut * sigma))
	if bound >= ringModulus/2 {
		return nil, errors.InvalidInput("sigma too large for the sampling ring modulus")
	}
	gs := ring.NewGaussianSampler(s.prng, s.ringQ, sigma, bound)
	return &coeffStream{ringQ: s.ringQ, gs: gs, pos: ringDegree}, nil
}

// coeffStream refills a polynomial on demand and hands out its recentered
// coefficients one at a time.
type coeffStream struct {
	ringQ *ring.Ring
	gs    *ring.GaussianSampler
	poly  *ring.Poly
	pos   int
}

func (c *coeffStream) next() int64 {
	if c.pos >= ringDegree {
		if c.poly == nil {
			c.poly = c.ringQ.NewPoly()
		}
		c.gs.Read(c.poly)
		c.pos = 0
	}
	cu := c.poly.Coeffs[0][c.pos]
	c.pos++
	if cu > ringModulus/2 {
		return int64(cu) - int64(ringModulus)
	}
	return int64(cu)
}
