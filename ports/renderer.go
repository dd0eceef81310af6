package ports

import (
	"io"

	"saga/internal/analysis"
)

// UnivariateRenderer renders a single univariate validation result.
type UnivariateRenderer interface {
	RenderUnivariate(w io.Writer, result *analysis.UnivariateResult) error
}

// MultivariateRenderer renders a multivariate validation result.
type MultivariateRenderer interface {
	RenderMultivariate(w io.Writer, result *analysis.MultivariateResult) error
}

// Renderer renders both result kinds. Plot, spreadsheet and report
// adapters all satisfy this.
type Renderer interface {
	UnivariateRenderer
	MultivariateRenderer
}
