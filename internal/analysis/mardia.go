package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"saga/internal/errors"
)

// minimum sample count for Mardia's asymptotics to be trustworthy
const mardiaMinSamples = 500

// MardiaResult carries Mardia's classical multivariate normality estimators:
// A, the generalized skewness (chi-square with d(d+1)(d+2)/6 degrees of
// freedom under the null), and B, the generalized kurtosis (standard
// normal under the null).
type MardiaResult struct {
	A TestResult `json:"a"`
	B TestResult `json:"b"`
	// Advisory is set when the sample count is below the recommended
	// minimum; the statistics are still returned.
	Advisory string `json:"advisory,omitempty"`
}

// Mardia runs Mardia's test on the sample set. The pairwise Mahalanobis
// products make this O(n^2 d) in time, so it is provided for
// cross-validation on moderate sample counts rather than as part of the
// default multivariate run.
func (r *MultivariateResult) Mardia() (*MardiaResult, error) {
	n, d := r.N, r.Dim
	nf := float64(n)
	df := float64(d)

	// Center the data around its column means.
	centered := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, r.data)
		mean := stat.Mean(col, nil)
		for i, v := range col {
			centered.Set(i, j, v-mean)
		}
	}

	// Population covariance estimate S = C^T C / n, and its inverse.
	var s mat.Dense
	s.Mul(centered.T(), centered)
	s.Scale(1/nf, &s)
	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return nil, errors.DegenerateCovariance("sample covariance matrix is singular")
	}

	// u_i = c_i S^-1, so the Mahalanobis product m_ij = u_i . c_j.
	var u mat.Dense
	u.Mul(centered, &sInv)

	var a, b float64
	for i := 0; i < n; i++ {
		ui := u.RawRowView(i)
		for j := 0; j < n; j++ {
			cj := centered.RawRowView(j)
			var m float64
			for k := 0; k < d; k++ {
				m += ui[k] * cj[k]
			}
			a += m * m * m
			if i == j {
				b += m * m
			}
		}
	}
	a /= 6 * nf
	b = b/nf - df*(df+2)
	b *= math.Sqrt(nf / (8 * df * (df + 2)))

	chiDF := d * (d + 1) * (d + 2) / 6
	res := &MardiaResult{
		A: TestResult{Statistic: a, PValue: chiSquarePValue(a, chiDF)},
		B: TestResult{Statistic: b, PValue: 1 - normalCDF(b)},
	}
	if n < mardiaMinSamples {
		res.Advisory = fmt.Sprintf(
			"only %d samples; at least %d are recommended for Mardia's test", n, mardiaMinSamples)
	}
	return res, nil
}
