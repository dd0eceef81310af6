package analysis

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"saga/domain/gaussian"
	"saga/internal/errors"
)

// MultivariateResult aggregates the statistics of a set of vector samples
// (signatures) against a centered multivariate Gaussian of the declared
// sigma. Unlike the univariate case there is no single boolean verdict:
// multivariate normality is multi-faceted and callers are expected to
// inspect each facet.
type MultivariateResult struct {
	Sigma float64 `json:"sigma"`
	N     int     `json:"n"`
	Dim   int     `json:"dim"`

	// Univariates holds one per-coordinate analysis (center 0); an entry is
	// nil when that coordinate's test aborted (see Errors).
	Univariates []*UnivariateResult `json:"univariates"`
	// GaussianCoords counts coordinates whose chi-square p-value clears the
	// configured minimum.
	GaussianCoords int `json:"gaussian_coords"`

	// Covariance is the sample covariance matrix normalized by sigma^2;
	// approximately the identity for a correctly scaled isotropic sampler.
	Covariance [][]float64 `json:"covariance"`

	DoornikHansen *DoornikHansenResult `json:"doornik_hansen,omitempty"`
	DiagCov       *TestResult          `json:"diag_cov,omitempty"`

	// Advisories are non-fatal reliability warnings; Errors records
	// sub-tests that aborted. A failure in one sub-test never prevents the
	// others from completing.
	Advisories []string `json:"advisories,omitempty"`
	Errors     []string `json:"errors,omitempty"`

	// DoornikHansenErr and DiagCovErr expose the sub-test failures
	// programmatically (also rendered into Errors).
	DoornikHansenErr error `json:"-"`
	DiagCovErr       error `json:"-"`

	cfg  gaussian.Config
	data *mat.Dense // n x dim raw sample matrix
}

// Multivariate analyzes a sequence of fixed-dimension vector samples
// assumed centered at 0 with the declared standard deviation. It fans out
// one univariate analysis per coordinate, estimates the normalized sample
// covariance, and runs the Doornik-Hansen and covariance-diagonals tests.
func Multivariate(sigma float64, vectors [][]float64, cfg gaussian.Config) (*MultivariateResult, error) {
	if len(vectors) == 0 {
		return nil, errors.InvalidInput("empty sample sequence")
	}
	if sigma <= 0 {
		return nil, errors.InvalidInput("sigma must be positive")
	}
	dim := len(vectors[0])
	if dim < 2 {
		return nil, errors.InvalidInput("multivariate samples need dimension >= 2")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, errors.InvalidInput(fmt.Sprintf(
				"vector %d has dimension %d, expected %d", i, len(v), dim))
		}
	}
	n := len(vectors)

	data := mat.NewDense(n, dim, nil)
	for i, v := range vectors {
		data.SetRow(i, v)
	}

	r := &MultivariateResult{
		Sigma:       sigma,
		N:           n,
		Dim:         dim,
		Univariates: make([]*UnivariateResult, dim),
		cfg:         cfg,
		data:        data,
	}
	if n < 4*dim {
		r.Advisories = append(r.Advisories, fmt.Sprintf(
			"only %d samples for dimension %d; at least %d are advised for reliable multivariate inference",
			n, dim, 4*dim))
	}

	// The per-coordinate analyses are independent read-only computations,
	// so they parallelize freely.
	coordErrs := make([]error, dim)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := 0; j < dim; j++ {
		g.Go(func() error {
			samples := make([]int64, n)
			for i := 0; i < n; i++ {
				samples[i] = int64(math.Round(data.At(i, j)))
			}
			u, err := Univariate(0, sigma, samples, cfg)
			if err != nil {
				coordErrs[j] = err
				return nil
			}
			r.Univariates[j] = u
			return nil
		})
	}
	g.Wait()
	for j, err := range coordErrs {
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("coordinate %d: %v", j, err))
		}
	}
	for _, u := range r.Univariates {
		if u != nil && u.ChiSquare.PValue > cfg.MinPValue {
			r.GaussianCoords++
		}
	}

	cov := r.normalizedCovariance()

	if dh, err := doornikHansen(data); err != nil {
		r.DoornikHansenErr = err
		r.Errors = append(r.Errors, fmt.Sprintf("doornik-hansen: %v", err))
	} else {
		r.DoornikHansen = dh
	}

	if dc, err := diagCov(cov, n); err != nil {
		r.DiagCovErr = err
		r.Errors = append(r.Errors, fmt.Sprintf("covariance diagonals: %v", err))
	} else {
		r.DiagCov = &dc
	}

	return r, nil
}

// normalizedCovariance estimates Cov(data)/sigma^2 and fills in both the
// exported slice form and the dense matrix used by the sub-tests.
func (r *MultivariateResult) normalizedCovariance() *mat.Dense {
	var sym mat.SymDense
	stat.CovarianceMatrix(&sym, r.data, nil)

	cov := mat.NewDense(r.Dim, r.Dim, nil)
	s2 := r.Sigma * r.Sigma
	r.Covariance = make([][]float64, r.Dim)
	for i := 0; i < r.Dim; i++ {
		r.Covariance[i] = make([]float64, r.Dim)
		for j := 0; j < r.Dim; j++ {
			v := sym.At(i, j) / s2
			cov.Set(i, j, v)
			r.Covariance[i][j] = v
		}
	}
	return cov
}

// CovarianceDense returns the normalized covariance matrix in dense form.
func (r *MultivariateResult) CovarianceDense() *mat.Dense {
	cov := mat.NewDense(r.Dim, r.Dim, nil)
	for i := range r.Covariance {
		cov.SetRow(i, r.Covariance[i])
	}
	return cov
}

// Report renders the sample statistics as a numbered checklist in a
// readable form.
func (r *MultivariateResult) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Testing a centered multivariate Gaussian of dimension = %d and sigma = %.3f\n", r.Dim, r.Sigma)
	fmt.Fprintf(&b, "Number of samples: %d\n\n", r.N)
	b.WriteString("The test checks that the data corresponds to a multivariate Gaussian, by doing the following:\n")
	b.WriteString("1 - Estimate the covariance matrix and check it is close to identity.\n")
	b.WriteString("2 - Perform the Doornik-Hansen test of multivariate normality.\n")
	b.WriteString("3 - Perform a custom test called covariance diagonals test.\n")
	b.WriteString("4 - Run a test of univariate normality on each coordinate.\n\n")
	for _, w := range r.Advisories {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	if r.DoornikHansen != nil {
		fmt.Fprintf(&b, "2 - P-value of Doornik-Hansen test:                %.4f\n", r.DoornikHansen.PO)
	} else {
		fmt.Fprintf(&b, "2 - Doornik-Hansen test failed:                    %v\n", r.DoornikHansenErr)
	}
	if r.DiagCov != nil {
		fmt.Fprintf(&b, "3 - P-value of covariance diagonals test:          %.4f\n", r.DiagCov.PValue)
	} else {
		fmt.Fprintf(&b, "3 - Covariance diagonals test failed:              %v\n", r.DiagCovErr)
	}
	fmt.Fprintf(&b, "4 - Gaussian coordinates (w/ st. dev. = sigma)?    %d out of %d\n", r.GaussianCoords, r.Dim)
	return b.String()
}
