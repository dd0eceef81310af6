package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"saga/domain/gaussian"
	"saga/internal/errors"
)

// TestResult is a statistic / p-value pair produced by a single test.
type TestResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// UnivariateResult holds the statistics of an empirical integer sample
// sequence compared against the discrete Gaussian reference model. It is
// fully computed at construction and immutable afterwards.
type UnivariateResult struct {
	Center float64 `json:"center"` // declared center
	Sigma  float64 `json:"sigma"`  // declared standard deviation
	N      int     `json:"n"`      // number of samples

	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"` // second central moment
	StdDev   float64 `json:"std_dev"`
	Skewness float64 `json:"skewness"` // expected 0 for a Gaussian
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis, expected 0

	ChiSquare TestResult `json:"chi_square"`
	Buckets   int        `json:"buckets"`  // buckets remaining after merging
	Outliers  int        `json:"outliers"` // samples outside the truncated support
	Valid     bool       `json:"valid"`

	cfg       gaussian.Config
	pdt       *gaussian.PDT
	histogram []int64
}

// Univariate compares an integer sample sequence against the discrete
// Gaussian D_Z(center, sigma). Samples outside the truncated support are
// counted as outliers instead of entering the histogram, and any outlier
// invalidates the sequence regardless of the chi-square outcome.
func Univariate(center, sigma float64, samples []int64, cfg gaussian.Config) (*UnivariateResult, error) {
	if len(samples) == 0 {
		return nil, errors.InvalidInput("empty sample sequence")
	}
	pdt, err := gaussian.NewPDT(center, sigma, cfg)
	if err != nil {
		return nil, err
	}

	r := &UnivariateResult{
		Center:    center,
		Sigma:     sigma,
		N:         len(samples),
		cfg:       cfg,
		pdt:       pdt,
		histogram: make([]int64, pdt.Len()),
	}
	for _, z := range samples {
		if !pdt.Contains(z) {
			r.Outliers++
			continue
		}
		r.histogram[z-pdt.Min()]++
	}

	if err := r.computeMoments(samples); err != nil {
		return nil, err
	}
	if err := r.chiSquare(); err != nil {
		return nil, err
	}

	r.Valid = r.ChiSquare.PValue > cfg.MinPValue && r.Outliers == 0
	return r, nil
}

// computeMoments derives the empirical moments from the raw samples, not
// the histogram, so outliers still contribute.
func (r *UnivariateResult) computeMoments(samples []int64) error {
	data := make([]float64, len(samples))
	for i, z := range samples {
		data[i] = float64(z)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return errors.Wrap(err, "computing sample mean")
	}

	n := float64(len(data))
	var m2, m3, m4 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n

	r.Mean = mean
	r.Variance = m2
	r.StdDev = math.Sqrt(m2)
	if m2 > 0 {
		r.Skewness = m3 / math.Pow(m2, 1.5)
		r.Kurtosis = m4/(m2*m2) - 3
	}
	return nil
}

// chiBucket is a merged (observed, expected) cell of the goodness-of-fit test.
type chiBucket struct {
	observed int64
	expected float64 // probability mass, converted to a count at test time
}

// chiSquare runs the adaptive Pearson goodness-of-fit test. Adjacent cells
// are merged left to right until each bucket's expected probability reaches
// ChiSquareBucket/n, then the two rightmost buckets are merged
// unconditionally to guard the right tail. The merge produces a fresh
// compacted slice in a single linear sweep.
func (r *UnivariateResult) chiSquare() error {
	probs := r.pdt.Probabilities()
	threshold := float64(r.cfg.ChiSquareBucket) / float64(r.N)

	var buckets []chiBucket
	var accObs int64
	var accExp float64
	for i, p := range probs {
		accObs += r.histogram[i]
		accExp += p
		if accExp >= threshold {
			buckets = append(buckets, chiBucket{observed: accObs, expected: accExp})
			accObs, accExp = 0, 0
		}
	}
	// Trailing cells below the threshold form a final weak bucket; the
	// unconditional tail merge below absorbs it.
	if accExp > 0 {
		buckets = append(buckets, chiBucket{observed: accObs, expected: accExp})
	}
	if len(buckets) < 3 {
		return errors.InvalidInput(fmt.Sprintf(
			"%d samples form only %d chi-square buckets, need at least 3 before the tail merge",
			r.N, len(buckets)))
	}
	last := len(buckets) - 1
	buckets[last-1].observed += buckets[last].observed
	buckets[last-1].expected += buckets[last].expected
	buckets = buckets[:last]

	var statistic float64
	for _, b := range buckets {
		expected := math.Round(b.expected * float64(r.N))
		if expected <= 0 {
			return errors.InternalError("chi-square bucket with zero expected count")
		}
		d := float64(b.observed) - expected
		statistic += d * d / expected
	}
	r.Buckets = len(buckets)
	r.ChiSquare = TestResult{
		Statistic: statistic,
		PValue:    chiSquarePValue(statistic, len(buckets)-1),
	}
	return nil
}

// PDT returns the reference model the samples were tested against.
func (r *UnivariateResult) PDT() *gaussian.PDT { return r.pdt }

// Histogram returns a copy of the empirical histogram over the reference
// support, ordered from PDT().Min() upward.
func (r *UnivariateResult) Histogram() []int64 {
	out := make([]int64, len(r.histogram))
	copy(out, r.histogram)
	return out
}

// Report renders the sample statistics in a readable form.
func (r *UnivariateResult) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Testing a Gaussian sampler with center = %v and sigma = %v\n", r.Center, r.Sigma)
	fmt.Fprintf(&b, "Number of samples: %d\n\n", r.N)
	b.WriteString("Moments  |   Expected     Empiric\n")
	b.WriteString("---------+----------------------\n")
	fmt.Fprintf(&b, "Mean:    |   %.5f      %.5f\n", r.Center, r.Mean)
	fmt.Fprintf(&b, "St. dev. |   %.5f      %.5f\n", r.Sigma, r.StdDev)
	fmt.Fprintf(&b, "Skewness |   %.5f      %.5f\n", 0.0, r.Skewness)
	fmt.Fprintf(&b, "Kurtosis |   %.5f      %.5f\n\n", 0.0, r.Kurtosis)
	fmt.Fprintf(&b, "Chi-2 statistic:   %g\n", r.ChiSquare.Statistic)
	fmt.Fprintf(&b, "Chi-2 p-value:     %g   (should be > %g)\n\n", r.ChiSquare.PValue, r.cfg.MinPValue)
	fmt.Fprintf(&b, "How many outliers? %d\n\n", r.Outliers)
	fmt.Fprintf(&b, "Is the sample valid? %v\n", r.Valid)
	return b.String()
}
