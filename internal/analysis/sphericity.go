package analysis

import (
	"gonum.org/v1/gonum/mat"

	"saga/internal/errors"
)

// SphericityIndex reports the Box index and the centered Box index of a
// covariance matrix. Both tend to 1 when the matrix is the identity, so
// they give a quick scalar summary of how spherical a sampler's output is
// before running the heavier normality tests.
func SphericityIndex(cov *mat.Dense) (box, centeredBox float64, err error) {
	dim, cols := cov.Dims()
	if dim != cols || dim < 2 {
		return 0, 0, errors.InvalidInput("covariance matrix must be square with dimension >= 2")
	}

	rowMean := make([]float64, dim)
	var meanMean float64
	for i := 0; i < dim; i++ {
		var s float64
		for j := 0; j < dim; j++ {
			s += cov.At(i, j)
		}
		rowMean[i] = s / float64(dim)
		meanMean += rowMean[i]
	}
	meanMean /= float64(dim)

	var trace, sumSq, cTrace, cSumSq float64
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			v := cov.At(i, j)
			sumSq += v * v
			c := v + meanMean - rowMean[i] - rowMean[j]
			cSumSq += c * c
			if i == j {
				trace += v
				cTrace += c
			}
		}
	}

	den := float64(dim-1) * sumSq
	cDen := float64(dim-1) * cSumSq
	if den == 0 || cDen == 0 {
		return 0, 0, errors.InvalidInput("covariance matrix is identically zero")
	}
	return trace * trace / den, cTrace * cTrace / cDen, nil
}
