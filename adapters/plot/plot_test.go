package plot

import (
	"bytes"
	"strings"
	"testing"

	"saga/domain/gaussian"
	"saga/internal/analysis"
	"saga/internal/testkit"
)

func TestRenderUnivariate(t *testing.T) {
	cfg := gaussian.DefaultConfig()
	pdt, err := gaussian.NewPDT(0, 1.5, cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := analysis.Univariate(0, 1.5, testkit.Replay(pdt, 10000), cfg)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewRenderer().RenderUnivariate(&buf, result); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, "echarts") {
		t.Fatal("expected an echarts document")
	}
	for _, want := range []string{"observed", "expected", "Sampler histogram"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered chart missing %q", want)
		}
	}
}

func TestRenderMultivariate(t *testing.T) {
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.GaussianVectors(3.0, 500, 8, 31, cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := analysis.Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewRenderer().RenderMultivariate(&buf, result); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"echarts", "covariance", "Normalized covariance"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered chart missing %q", want)
		}
	}
}
