package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"saga/internal/errors"
)

// diagCov is a custom sphericity test on a normalized covariance matrix.
// Under the null the matrix is the identity, so every off-diagonal cell is
// an independent, zero-mean, approximately normal variable of variance 1/n.
//
// Partition the matrix into four d/2 x d/2 quadrants:
//
//	 ____________
//	|     |     |
//	|  1  |  3  |
//	|_____|_____|
//	|     |     |
//	|     |  2  |
//	|_____|_____|
//
// For offsets i = 1 .. d/2-1 the test sums the i-th parallel diagonal of
// quadrants 1 and 2, and the i-th super- and sub-diagonals crossing
// quadrant 3. Each sum of k cells has variance k/n, so after scaling by
// sqrt(n/k) the 4*(d/2-1) sums are i.i.d. standard normal and their sum of
// squares is chi-square distributed.
func diagCov(cov *mat.Dense, nsamples int) (TestResult, error) {
	dim, cols := cov.Dims()
	if dim != cols {
		return TestResult{}, errors.InvalidInput("covariance matrix must be square")
	}
	n0 := dim / 2
	if n0 < 2 {
		return TestResult{}, errors.InvalidInput("covariance diagonals test needs dimension >= 4")
	}

	diagsum := make([]float64, 2*dim)
	for i := 1; i < n0; i++ {
		for j := 0; j < n0-i; j++ {
			diagsum[i] += cov.At(j, i+j)
			diagsum[i+n0] += cov.At(n0+j, n0+i+j)
			diagsum[i+2*n0] += cov.At(j, n0+i+j)
			diagsum[i+3*n0] += cov.At(j, n0-i+j)
		}
	}

	var statistic float64
	for i := 1; i < n0; i++ {
		nfactor := math.Sqrt(float64(nsamples) / float64(n0-i))
		for _, off := range []int{0, n0, 2 * n0, 3 * n0} {
			v := diagsum[i+off] * nfactor
			statistic += v * v
		}
	}

	df := 4 * (n0 - 1)
	return TestResult{
		Statistic: statistic,
		PValue:    chiSquarePValue(statistic, df),
	}, nil
}
