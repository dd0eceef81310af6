// Package plot renders validation results as self-contained HTML charts.
package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"saga/internal/analysis"
	"saga/internal/errors"
)

// Renderer draws an observed-vs-expected histogram for univariate results
// and a covariance heatmap for multivariate results.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderUnivariate writes a bar chart comparing the empirical histogram
// against the expected counts over the truncated support.
func (p *Renderer) RenderUnivariate(w io.Writer, result *analysis.UnivariateResult) error {
	pdt := result.PDT()
	hist := result.Histogram()
	probs := pdt.Probabilities()

	labels := make([]string, len(hist))
	observed := make([]opts.BarData, len(hist))
	expected := make([]opts.BarData, len(hist))
	for i := range hist {
		z := pdt.Min() + int64(i)
		labels[i] = fmt.Sprintf("%d", z)
		observed[i] = opts.BarData{Value: hist[i]}
		expected[i] = opts.BarData{Value: math.Round(probs[i] * float64(result.N))}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Sampler histogram, center=%g sigma=%g", result.Center, result.Sigma),
			Subtitle: fmt.Sprintf("n=%d, chi-square p=%.4f, valid=%v", result.N, result.ChiSquare.PValue, result.Valid),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "z"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	bar.SetXAxis(labels).
		AddSeries("observed", observed).
		AddSeries("expected", expected)

	if err := bar.Render(w); err != nil {
		return errors.Wrap(err, "rendering histogram chart")
	}
	return nil
}

// RenderMultivariate writes a heatmap of the normalized covariance matrix.
// For a correctly scaled isotropic sampler the diagonal sits near 1 and
// everything off-diagonal near 0.
func (p *Renderer) RenderMultivariate(w io.Writer, result *analysis.MultivariateResult) error {
	dim := result.Dim
	labels := make([]string, dim)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}

	items := make([]opts.HeatMapData, 0, dim*dim)
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			v := result.Covariance[i][j]
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
			items = append(items, opts.HeatMapData{Value: [3]interface{}{j, i, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Normalized covariance, dim=%d sigma=%.3f", dim, result.Sigma),
			Subtitle: fmt.Sprintf("n=%d, gaussian coordinates %d/%d", result.N, result.GaussianCoords, dim),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: labels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(minV),
			Max:        float32(maxV),
			InRange:    &opts.VisualMapInRange{Color: []string{"#0ea5e9", "#f8fafc", "#ef4444"}},
		}),
	)
	hm.AddSeries("covariance", items)

	if err := hm.Render(w); err != nil {
		return errors.Wrap(err, "rendering covariance heatmap")
	}
	return nil
}
