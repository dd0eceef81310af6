// Package ui exposes the validation service over HTTP. Corpora are posted
// as the same text formats the CLI consumes, and finished runs can be
// fetched back as JSON or rendered HTML.
package ui

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"saga/adapters/corpus"
	"saga/adapters/report"
	"saga/app"
	"saga/internal"
	"saga/internal/errors"
)

// Server wires the validation service into a chi router with an in-memory
// run store.
type Server struct {
	router  *chi.Mux
	service *app.ValidationService
	log     *internal.Logger

	mu   sync.RWMutex
	runs map[string]*app.RunReport
}

func NewServer(service *app.ValidationService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     logger,
		runs:    make(map[string]*app.RunReport),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/univariate", s.handleUnivariate)
		r.Post("/multivariate", s.handleMultivariate)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	s.router.Get("/runs/{id}", s.handleRunHTML)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUnivariate accepts a univariate corpus in the interleaved
// header/samples text format and validates every block.
func (s *Server) handleUnivariate(w http.ResponseWriter, r *http.Request) {
	blocks, err := corpus.ParseUnivariate(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	run, err := s.service.ValidateUnivariate(r.Context(), "http upload", blocks)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeRun(run)
	s.writeJSON(w, http.StatusOK, run)
}

// handleMultivariate accepts a multivariate corpus, one comma separated
// vector per line. Sigma is estimated from the corpus itself unless a
// sigma query parameter overrides it.
func (s *Server) handleMultivariate(w http.ResponseWriter, r *http.Request) {
	parsed, err := corpus.ParseMultivariate(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sigma := parsed.Sigma
	if raw := r.URL.Query().Get("sigma"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, errors.InvalidInput("sigma query parameter is not a number"))
			return
		}
		sigma = v
	}
	run, err := s.service.ValidateMultivariate(r.Context(), "http upload", sigma, parsed.Vectors)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeRun(run)
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(chi.URLParam(r, "id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunHTML(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderRunHTML(w, run); err != nil {
		s.log.Error("rendering run %s: %v", run.ID, err)
	}
}

func (s *Server) storeRun(run *app.RunReport) {
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
}

func (s *Server) lookupRun(id string) (*app.RunReport, bool) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	return run, ok
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeParseError:
		status = http.StatusBadRequest
	case errors.CodeDegenerateCovariance:
		status = http.StatusUnprocessableEntity
	}
	s.log.Warn("request failed: %v", err)
	s.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
