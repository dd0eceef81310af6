package analysis

import (
	"testing"

	"saga/domain/gaussian"
	"saga/internal/testkit"
)

func TestMardiaAcceptsIsotropicGaussian(t *testing.T) {
	if testing.Short() {
		t.Skip("quadratic-cost test")
	}
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.GaussianVectors(3.0, 2000, 8, 11, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}

	m, err := r.Mardia()
	if err != nil {
		t.Fatal(err)
	}
	if m.Advisory != "" {
		t.Fatalf("unexpected advisory for n=2000: %s", m.Advisory)
	}
	if m.A.PValue <= cfg.MinPValue {
		t.Fatalf("generalized skewness rejected: A=%v p=%v", m.A.Statistic, m.A.PValue)
	}
	if m.B.PValue <= cfg.MinPValue {
		t.Fatalf("generalized kurtosis rejected: B=%v p=%v", m.B.Statistic, m.B.PValue)
	}
}

func TestMardiaAdvisoryOnFewSamples(t *testing.T) {
	cfg := gaussian.DefaultConfig()
	vectors, err := testkit.GaussianVectors(3.0, 200, 4, 12, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Multivariate(3.0, vectors, cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, err := r.Mardia()
	if err != nil {
		t.Fatal(err)
	}
	if m.Advisory == "" {
		t.Fatal("expected advisory for n < 500")
	}
}
