package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saga/app"
	"saga/domain/gaussian"
	"saga/internal/testkit"
)

func newTestServer() *Server {
	return NewServer(app.NewValidationService(gaussian.DefaultConfig(), nil), nil)
}

func univariateBody(t *testing.T, center, sigma float64, n int) string {
	t.Helper()
	pdt, err := gaussian.NewPDT(center, sigma, gaussian.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "mu = %g, sigma = %g\n", center, sigma)
	for _, v := range testkit.Replay(pdt, n) {
		fmt.Fprintf(&b, "%d, ", v)
	}
	b.WriteString("\n")
	return b.String()
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUnivariateEndpoint(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/univariate", strings.NewReader(univariateBody(t, 0, 1.5, 10000)))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var run app.RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatal(err)
	}
	if !run.Valid || len(run.Items) != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}

	// The stored run must be retrievable as JSON and as HTML.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+run.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for stored run, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for html run, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Validation run") {
		t.Fatal("html page missing run heading")
	}
}

func TestUnivariateEndpointRejectsGarbage(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/univariate", strings.NewReader("not a corpus\n"))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["code"] != "PARSE_ERROR" {
		t.Fatalf("expected PARSE_ERROR, got %q", resp["code"])
	}
}

func TestMultivariateEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("large sample run")
	}
	srv := newTestServer()
	vectors, err := testkit.GaussianVectors(3.0, 4000, 8, 81, gaussian.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for _, vec := range vectors {
		for _, v := range vec {
			fmt.Fprintf(&b, "%d, ", int64(v))
		}
		b.WriteString("\n")
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/multivariate?sigma=3.0", strings.NewReader(b.String()))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var run app.RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatal(err)
	}
	if run.Multivariate == nil {
		t.Fatal("missing multivariate result")
	}
}

func TestMultivariateBadSigmaParam(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/multivariate?sigma=abc", strings.NewReader("1, 2,\n3, 4,\n"))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetUnknownRun(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
