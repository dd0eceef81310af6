package analysis

import (
	"math"
	"strings"
	"testing"

	"saga/domain/gaussian"
	"saga/internal/errors"
	"saga/internal/testkit"
)

func TestMultivariateAcceptsIsotropicGaussian(t *testing.T) {
	if testing.Short() {
		t.Skip("large sample run")
	}
	cfg := gaussian.DefaultConfig()
	const (
		sigma = 4.0
		n     = 10000
		d     = 64
	)
	vectors, err := testkit.GaussianVectors(sigma, n, d, 1, cfg)
	if err != nil {
		t.Fatal(err)
	}

	r, err := Multivariate(sigma, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r.DoornikHansen == nil {
		t.Fatalf("Doornik-Hansen aborted: %v", r.DoornikHansenErr)
	}
	if r.DoornikHansen.PO <= cfg.MinPValue || r.DoornikHansen.PA <= cfg.MinPValue {
		t.Fatalf("Doornik-Hansen rejected isotropic data: PO=%v PA=%v", r.DoornikHansen.PO, r.DoornikHansen.PA)
	}
	if r.DiagCov == nil {
		t.Fatalf("covariance diagonals test aborted: %v", r.DiagCovErr)
	}
	if r.DiagCov.PValue <= cfg.MinPValue {
		t.Fatalf("covariance diagonals rejected isotropic data: p=%v", r.DiagCov.PValue)
	}
	// With 64 independent coordinates a rare chi-square fluke is possible,
	// but nearly all coordinates must pass.
	if r.GaussianCoords < d-2 {
		t.Fatalf("only %d of %d coordinates look Gaussian", r.GaussianCoords, d)
	}

	// Normalized covariance should be close to the identity.
	for i := 0; i < d; i++ {
		if math.Abs(r.Covariance[i][i]-1) > 0.1 {
			t.Fatalf("diagonal entry (%d,%d) = %v, want near 1", i, i, r.Covariance[i][i])
		}
		for j := 0; j < i; j++ {
			if math.Abs(r.Covariance[i][j]) > 0.1 {
				t.Fatalf("off-diagonal entry (%d,%d) = %v, want near 0", i, j, r.Covariance[i][j])
			}
		}
	}
}

func TestMultivariateDegenerateCovariance(t *testing.T) {
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.CollinearVectors(3.0, 2000, 8, 2, cfg)
	if err != nil {
		t.Fatal(err)
	}

	r, err := Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r.DoornikHansenErr == nil {
		t.Fatal("expected degenerate covariance failure from Doornik-Hansen")
	}
	if errors.GetCode(r.DoornikHansenErr) != errors.CodeDegenerateCovariance {
		t.Fatalf("unexpected code %s", errors.GetCode(r.DoornikHansenErr))
	}
	// One failing sub-test must not block the others.
	if r.DiagCov == nil {
		t.Fatalf("covariance diagonals should still run: %v", r.DiagCovErr)
	}
	if len(r.Univariates) != 8 {
		t.Fatalf("expected 8 per-coordinate analyses, got %d", len(r.Univariates))
	}
	found := false
	for _, msg := range r.Errors {
		if strings.Contains(msg, "doornik-hansen") {
			found = true
		}
	}
	if !found {
		t.Fatalf("degenerate covariance not reported in Errors: %v", r.Errors)
	}
}

func TestMultivariateAdvisoryOnFewSamples(t *testing.T) {
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.GaussianVectors(3.0, 16, 8, 3, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Advisories) == 0 {
		t.Fatal("expected an advisory for n < 4*d")
	}
}

func TestMultivariateInputErrors(t *testing.T) {
	cfg := gaussian.DefaultConfig()

	if _, err := Multivariate(1.5, nil, cfg); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := Multivariate(0, [][]float64{{1, 2}}, cfg); err == nil {
		t.Fatal("expected error for non-positive sigma")
	}
	if _, err := Multivariate(1.5, [][]float64{{1}}, cfg); err == nil {
		t.Fatal("expected error for dimension < 2")
	}
	mixed := [][]float64{{1, 2, 3}, {1, 2}}
	if _, err := Multivariate(1.5, mixed, cfg); err == nil {
		t.Fatal("expected error for mismatched dimensions")
	} else if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Fatalf("unexpected code %s", errors.GetCode(err))
	}
}

func TestMultivariateReport(t *testing.T) {
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.GaussianVectors(3.0, 4000, 8, 4, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}
	report := r.Report()
	for _, want := range []string{"Doornik-Hansen", "covariance diagonals", "Gaussian coordinates"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
