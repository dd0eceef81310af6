package report

import (
	"bytes"
	"strings"
	"testing"

	"saga/domain/gaussian"
	"saga/internal/analysis"
	"saga/internal/testkit"
)

func univariateFixture(t *testing.T) *analysis.UnivariateResult {
	t.Helper()
	cfg := gaussian.DefaultConfig()
	pdt, err := gaussian.NewPDT(0, 1.5, cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := analysis.Univariate(0, 1.5, testkit.Replay(pdt, 10000), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func multivariateFixture(t *testing.T) *analysis.MultivariateResult {
	t.Helper()
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.GaussianVectors(3.0, 500, 8, 51, cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := analysis.Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextRenderer().RenderUnivariate(&buf, univariateFixture(t)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Chi-2 statistic") {
		t.Fatalf("text report missing chi-square line:\n%s", buf.String())
	}
}

func TestMarkdownUnivariate(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownRenderer().RenderUnivariate(&buf, univariateFixture(t)); err != nil {
		t.Fatal(err)
	}
	md := buf.String()
	for _, want := range []string{"# Gaussian sampler validation", "| Chi-square p-value |", "sample accepted"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown report missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownMultivariate(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownRenderer().RenderMultivariate(&buf, multivariateFixture(t)); err != nil {
		t.Fatal(err)
	}
	md := buf.String()
	for _, want := range []string{"# Multivariate Gaussian validation", "Doornik-Hansen", "Covariance diagonals"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown report missing %q:\n%s", want, md)
		}
	}
}

func TestHTMLUnivariate(t *testing.T) {
	var buf bytes.Buffer
	if err := NewHTMLRenderer().RenderUnivariate(&buf, univariateFixture(t)); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"<html>", "<table>", "Gaussian sampler validation"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html report missing %q", want)
		}
	}
}
