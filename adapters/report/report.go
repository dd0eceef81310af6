// Package report renders validation results as plain text, Markdown and
// HTML documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"saga/internal/analysis"
	"saga/internal/errors"
)

// TextRenderer writes the same human-readable checklist the reports print
// to stdout.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (t *TextRenderer) RenderUnivariate(w io.Writer, result *analysis.UnivariateResult) error {
	_, err := io.WriteString(w, result.Report())
	return errors.Wrap(err, "writing text report")
}

func (t *TextRenderer) RenderMultivariate(w io.Writer, result *analysis.MultivariateResult) error {
	_, err := io.WriteString(w, result.Report())
	return errors.Wrap(err, "writing text report")
}

// MarkdownRenderer writes a Markdown document with a statistics table per
// result.
type MarkdownRenderer struct{}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

func (m *MarkdownRenderer) RenderUnivariate(w io.Writer, result *analysis.UnivariateResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Gaussian sampler validation\n\n")
	fmt.Fprintf(&b, "Center %g, sigma %g, %d samples.\n\n", result.Center, result.Sigma, result.N)
	b.WriteString("| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Mean | %.5f |\n", result.Mean)
	fmt.Fprintf(&b, "| Std dev | %.5f |\n", result.StdDev)
	fmt.Fprintf(&b, "| Skewness | %.5f |\n", result.Skewness)
	fmt.Fprintf(&b, "| Excess kurtosis | %.5f |\n", result.Kurtosis)
	fmt.Fprintf(&b, "| Chi-square statistic | %.3f |\n", result.ChiSquare.Statistic)
	fmt.Fprintf(&b, "| Chi-square p-value | %.5f |\n", result.ChiSquare.PValue)
	fmt.Fprintf(&b, "| Buckets | %d |\n", result.Buckets)
	fmt.Fprintf(&b, "| Outliers | %d |\n", result.Outliers)
	fmt.Fprintf(&b, "\n**Verdict: %s**\n", verdict(result.Valid))
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing markdown report")
}

func (m *MarkdownRenderer) RenderMultivariate(w io.Writer, result *analysis.MultivariateResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Multivariate Gaussian validation\n\n")
	fmt.Fprintf(&b, "Dimension %d, sigma %.3f, %d samples.\n\n", result.Dim, result.Sigma, result.N)
	for _, adv := range result.Advisories {
		fmt.Fprintf(&b, "> Warning: %s\n\n", adv)
	}
	b.WriteString("| Test | Statistic | P-value |\n|---|---|---|\n")
	if result.DoornikHansen != nil {
		fmt.Fprintf(&b, "| Doornik-Hansen | %.3f | %.5f |\n", result.DoornikHansen.DH, result.DoornikHansen.PO)
		fmt.Fprintf(&b, "| Doornik-Hansen (asymptotic) | %.3f | %.5f |\n", result.DoornikHansen.AS, result.DoornikHansen.PA)
	} else {
		fmt.Fprintf(&b, "| Doornik-Hansen | failed | %v |\n", result.DoornikHansenErr)
	}
	if result.DiagCov != nil {
		fmt.Fprintf(&b, "| Covariance diagonals | %.3f | %.5f |\n", result.DiagCov.Statistic, result.DiagCov.PValue)
	} else {
		fmt.Fprintf(&b, "| Covariance diagonals | failed | %v |\n", result.DiagCovErr)
	}
	fmt.Fprintf(&b, "\nCoordinates passing the univariate test: %d/%d.\n", result.GaussianCoords, result.Dim)
	for _, msg := range result.Errors {
		fmt.Fprintf(&b, "\nError: %s\n", msg)
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing markdown report")
}

// HTMLRenderer converts the Markdown rendering to a standalone HTML page.
type HTMLRenderer struct {
	md *MarkdownRenderer
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: NewMarkdownRenderer()}
}

func (h *HTMLRenderer) RenderUnivariate(w io.Writer, result *analysis.UnivariateResult) error {
	var buf strings.Builder
	if err := h.md.RenderUnivariate(&buf, result); err != nil {
		return err
	}
	return writeHTML(w, buf.String())
}

func (h *HTMLRenderer) RenderMultivariate(w io.Writer, result *analysis.MultivariateResult) error {
	var buf strings.Builder
	if err := h.md.RenderMultivariate(&buf, result); err != nil {
		return err
	}
	return writeHTML(w, buf.String())
}

func writeHTML(w io.Writer, md string) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	out := markdown.ToHTML([]byte(md), p, renderer)
	if _, err := w.Write(out); err != nil {
		return errors.Wrap(err, "writing html report")
	}
	return nil
}

func verdict(valid bool) string {
	if valid {
		return "sample accepted"
	}
	return "sample rejected"
}
