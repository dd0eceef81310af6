package app

import (
	"context"
	"testing"

	"saga/adapters/corpus"
	"saga/domain/gaussian"
	"saga/internal/testkit"
)

func service() *ValidationService {
	return NewValidationService(gaussian.DefaultConfig(), nil)
}

func replayBlock(t *testing.T, center, sigma float64, n int) corpus.UnivariateSample {
	t.Helper()
	pdt, err := gaussian.NewPDT(center, sigma, gaussian.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return corpus.UnivariateSample{Center: center, Sigma: sigma, Samples: testkit.Replay(pdt, n)}
}

func TestValidateUnivariateAllBlocksPass(t *testing.T) {
	s := service()
	blocks := []corpus.UnivariateSample{
		replayBlock(t, 0, 1.5, 10000),
		replayBlock(t, -3, 2.5, 10000),
	}
	report, err := s.ValidateUnivariate(context.Background(), "test-corpus", blocks)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Valid {
		t.Fatalf("expected valid run, got %+v", report)
	}
	if len(report.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(report.Items))
	}
	for _, item := range report.Items {
		if item.Result == nil || !item.Result.Valid {
			t.Fatalf("item %d should have passed: %+v", item.Index, item)
		}
		if item.Fingerprint == "" {
			t.Fatalf("item %d missing fingerprint", item.Index)
		}
	}
	if report.ID == "" || report.Kind != "univariate" || report.Source != "test-corpus" {
		t.Fatalf("unexpected report metadata: %+v", report)
	}
}

func TestValidateUnivariateIsolatesFailingBlock(t *testing.T) {
	s := service()
	blocks := []corpus.UnivariateSample{
		replayBlock(t, 0, 1.5, 10000),
		{Center: 0, Sigma: -1, Samples: []int64{1, 2, 3}},
	}
	report, err := s.ValidateUnivariate(context.Background(), "mixed", blocks)
	if err != nil {
		t.Fatal(err)
	}
	if report.Valid {
		t.Fatal("run with a failed block must not be valid")
	}
	if report.Items[0].Result == nil || !report.Items[0].Result.Valid {
		t.Fatal("healthy block should still have been validated")
	}
	if report.Items[1].Err == "" || report.Items[1].Result != nil {
		t.Fatalf("failing block should carry an error: %+v", report.Items[1])
	}
}

func TestValidateUnivariateDeterministicFingerprints(t *testing.T) {
	s := service()
	block := replayBlock(t, 0, 1.5, 5000)
	a, err := s.ValidateUnivariate(context.Background(), "a", []corpus.UnivariateSample{block})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.ValidateUnivariate(context.Background(), "b", []corpus.UnivariateSample{block})
	if err != nil {
		t.Fatal(err)
	}
	if a.Items[0].Fingerprint != b.Items[0].Fingerprint {
		t.Fatal("same samples must produce the same fingerprint")
	}
	if a.ID == b.ID {
		t.Fatal("distinct runs must get distinct ids")
	}
}

func TestValidateMultivariate(t *testing.T) {
	if testing.Short() {
		t.Skip("large sample run")
	}
	s := service()
	vectors, err := testkit.GaussianVectors(4.0, 10000, 16, 61, gaussian.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	report, err := s.ValidateMultivariate(context.Background(), "synthetic", 4.0, vectors)
	if err != nil {
		t.Fatal(err)
	}
	if report.Multivariate == nil || report.Fingerprint == "" {
		t.Fatalf("incomplete report: %+v", report)
	}
	if !report.Valid {
		t.Fatalf("expected isotropic Gaussian vectors to be accepted: %s", report.Multivariate.Report())
	}
}

func TestValidateMultivariateRejectsBadInput(t *testing.T) {
	s := service()
	if _, err := s.ValidateMultivariate(context.Background(), "bad", 1.0, nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestSelfTestUnivariate(t *testing.T) {
	s := service()
	src := testkit.NewSource("pdt-replay", 71, gaussian.DefaultConfig())
	report, err := s.SelfTest(context.Background(), src, SelfTestParams{Sigma: 1.5, N: 20000})
	if err != nil {
		t.Fatal(err)
	}
	if report.Kind != "univariate" || len(report.Items) != 1 {
		t.Fatalf("unexpected report shape: %+v", report)
	}
	if report.Source != "pdt-replay" {
		t.Fatalf("report should name its source, got %q", report.Source)
	}
}

func TestRunReportSummary(t *testing.T) {
	s := service()
	report, err := s.ValidateUnivariate(context.Background(), "x", []corpus.UnivariateSample{replayBlock(t, 0, 1.5, 5000)})
	if err != nil {
		t.Fatal(err)
	}
	summary := report.Summary()
	if summary == "" {
		t.Fatal("expected a summary line")
	}
}
