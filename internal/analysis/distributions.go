// Package analysis implements the statistical validation engine: the
// adaptive chi-square goodness-of-fit test for univariate discrete Gaussian
// samples and the multivariate normality suite (Doornik-Hansen, covariance
// diagonals, Mardia) for vector-valued samples.
package analysis

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// chiSquarePValue computes the upper-tail p-value for a chi-square statistic
func chiSquarePValue(statistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return 1 - chiDist.CDF(statistic)
}

// normalCDF computes the cumulative distribution function of the standard normal
func normalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
