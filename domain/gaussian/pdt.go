// Package gaussian builds the exact reference distribution a discrete
// Gaussian sampler is supposed to approximate: the truncated, renormalized
// probability distribution table (PDT) of D_Z(center, sigma).
package gaussian

import (
	"math"

	"saga/internal/errors"
)

// PDT is the probability distribution table of a truncated discrete
// Gaussian. Probabilities are stored in a contiguous slice indexed by
// offset from the minimum support value, which keeps histogram lookups a
// single subtraction instead of a map probe. A PDT is immutable after
// construction.
type PDT struct {
	center float64
	sigma  float64
	min    int64     // inclusive lower edge of the support
	max    int64     // exclusive upper edge of the support
	probs  []float64 // probs[z-min] = P(z), sums to 1
}

// NewPDT builds the reference table for a discrete Gaussian of the given
// center and standard deviation. The support is
// [floor(center)-zmax, ceil(center)+zmax) with zmax = ceil(TailCut*sigma),
// and the truncated masses are renormalized to sum to exactly 1.
func NewPDT(center, sigma float64, cfg Config) (*PDT, error) {
	if sigma <= 0 {
		return nil, errors.InvalidInput("sigma must be positive")
	}
	zmax := int64(math.Ceil(cfg.TailCut * sigma))
	min := int64(math.Floor(center)) - zmax
	max := int64(math.Ceil(center)) + zmax

	probs := make([]float64, max-min)
	sum := 0.0
	for z := min; z < max; z++ {
		x := float64(z) - center
		p := math.Exp(-x * x / (2 * sigma * sigma))
		probs[z-min] = p
		sum += p
	}
	for i := range probs {
		probs[i] /= sum
	}
	return &PDT{center: center, sigma: sigma, min: min, max: max, probs: probs}, nil
}

// Center returns the declared center of the distribution.
func (p *PDT) Center() float64 { return p.center }

// Sigma returns the declared standard deviation.
func (p *PDT) Sigma() float64 { return p.sigma }

// Min returns the inclusive lower edge of the truncated support.
func (p *PDT) Min() int64 { return p.min }

// Max returns the exclusive upper edge of the truncated support.
func (p *PDT) Max() int64 { return p.max }

// Len returns the number of support values.
func (p *PDT) Len() int { return len(p.probs) }

// Contains reports whether z lies on the truncated support. Values outside
// are outliers by definition.
func (p *PDT) Contains(z int64) bool { return z >= p.min && z < p.max }

// Prob returns the probability mass at z, or 0 outside the support.
func (p *PDT) Prob(z int64) float64 {
	if !p.Contains(z) {
		return 0
	}
	return p.probs[z-p.min]
}

// Probabilities returns a copy of the full table, ordered from Min to Max-1.
func (p *PDT) Probabilities() []float64 {
	out := make([]float64, len(p.probs))
	copy(out, p.probs)
	return out
}
