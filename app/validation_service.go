// Package app orchestrates validation runs over parsed corpora and live
// sample sources.
package app

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"saga/adapters/corpus"
	"saga/domain/gaussian"
	"saga/internal"
	"saga/internal/analysis"
	"saga/ports"
)

// UnivariateItem is the outcome of validating one (center, sigma, samples)
// block of a corpus. Failed items carry Err and a nil Result.
type UnivariateItem struct {
	Index       int                        `json:"index"`
	Center      float64                    `json:"center"`
	Sigma       float64                    `json:"sigma"`
	Fingerprint string                     `json:"fingerprint"`
	Result      *analysis.UnivariateResult `json:"result,omitempty"`
	Err         string                     `json:"error,omitempty"`
}

// RunReport is the aggregate outcome of one validation run.
type RunReport struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // univariate | multivariate
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`

	Items        []UnivariateItem             `json:"items,omitempty"`
	Multivariate *analysis.MultivariateResult `json:"multivariate,omitempty"`
	Fingerprint  string                       `json:"fingerprint,omitempty"`

	// Valid reports whether every item passed. For multivariate runs it
	// means all sub-tests ran and cleared the configured minimum p-value.
	Valid bool `json:"valid"`
}

// ValidationService runs the statistical test suite and assembles reports.
type ValidationService struct {
	cfg gaussian.Config
	log *internal.Logger
}

func NewValidationService(cfg gaussian.Config, logger *internal.Logger) *ValidationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ValidationService{cfg: cfg, log: logger}
}

// ValidateUnivariate checks every block of a univariate corpus. Blocks are
// validated concurrently and one failing block never aborts the others.
func (s *ValidationService) ValidateUnivariate(ctx context.Context, source string, blocks []corpus.UnivariateSample) (*RunReport, error) {
	report := s.newReport("univariate", source)
	report.Items = make([]UnivariateItem, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, block := range blocks {
		i, block := i, block
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := UnivariateItem{
				Index:       i,
				Center:      block.Center,
				Sigma:       block.Sigma,
				Fingerprint: fingerprintSamples(block.Samples),
			}
			result, err := analysis.Univariate(block.Center, block.Sigma, block.Samples, s.cfg)
			if err != nil {
				s.log.Warn("univariate block %d failed: %v", i, err)
				item.Err = err.Error()
			} else {
				item.Result = result
			}
			report.Items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Valid = len(blocks) > 0
	for _, item := range report.Items {
		if item.Result == nil || !item.Result.Valid {
			report.Valid = false
		}
	}
	s.log.Info("univariate run %s: %d blocks, valid=%v", report.ID, len(blocks), report.Valid)
	return report, nil
}

// ValidateMultivariate checks a multivariate corpus against the declared
// standard deviation.
func (s *ValidationService) ValidateMultivariate(ctx context.Context, source string, sigma float64, vectors [][]float64) (*RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := s.newReport("multivariate", source)
	report.Fingerprint = fingerprintVectors(vectors)

	result, err := analysis.Multivariate(sigma, vectors, s.cfg)
	if err != nil {
		return nil, err
	}
	report.Multivariate = result
	report.Valid = multivariateVerdict(result, s.cfg)
	s.log.Info("multivariate run %s: n=%d dim=%d valid=%v", report.ID, result.N, result.Dim, report.Valid)
	return report, nil
}

// SelfTestParams configures a live draw-and-validate round trip against a
// sample source.
type SelfTestParams struct {
	Center float64
	Sigma  float64
	N      int
	Dim    int // 0 or 1 runs the univariate test only
}

// SelfTest draws fresh samples from the source and validates them. This is
// the end-to-end check that a sampler implementation matches its declared
// parameters.
func (s *ValidationService) SelfTest(ctx context.Context, src ports.SampleSource, params SelfTestParams) (*RunReport, error) {
	if params.N <= 0 {
		params.N = 100000
	}
	if params.Dim <= 1 {
		samples, err := src.Univariate(ctx, params.Center, params.Sigma, params.N)
		if err != nil {
			return nil, err
		}
		return s.ValidateUnivariate(ctx, src.Name(), []corpus.UnivariateSample{{
			Center:  params.Center,
			Sigma:   params.Sigma,
			Samples: samples,
		}})
	}
	vectors, err := src.Multivariate(ctx, params.Sigma, params.N, params.Dim)
	if err != nil {
		return nil, err
	}
	return s.ValidateMultivariate(ctx, src.Name(), params.Sigma, vectors)
}

func (s *ValidationService) newReport(kind, source string) *RunReport {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &RunReport{
		ID:        id.String(),
		Kind:      kind,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

func multivariateVerdict(r *analysis.MultivariateResult, cfg gaussian.Config) bool {
	if r.DoornikHansen == nil || r.DiagCov == nil {
		return false
	}
	if r.DoornikHansen.PO <= cfg.MinPValue || r.DiagCov.PValue <= cfg.MinPValue {
		return false
	}
	return r.GaussianCoords == r.Dim
}

// fingerprintSamples hashes a sample sequence so reports can be tied back
// to the exact corpus bytes that produced them.
func fingerprintSamples(samples []int64) string {
	h := sha3.New256()
	buf := make([]byte, 8)
	for _, v := range samples {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fingerprintVectors(vectors [][]float64) string {
	h := sha3.New256()
	buf := make([]byte, 8)
	for _, vec := range vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint64(buf, uint64(int64(v)))
			h.Write(buf)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Summary gives a one-line human description of a run for logs and CLI
// output.
func (r *RunReport) Summary() string {
	switch r.Kind {
	case "univariate":
		passed := 0
		for _, item := range r.Items {
			if item.Result != nil && item.Result.Valid {
				passed++
			}
		}
		return fmt.Sprintf("run %s: %d/%d univariate blocks accepted", r.ID, passed, len(r.Items))
	case "multivariate":
		if r.Multivariate == nil {
			return fmt.Sprintf("run %s: multivariate analysis missing", r.ID)
		}
		return fmt.Sprintf("run %s: multivariate n=%d dim=%d accepted=%v", r.ID, r.Multivariate.N, r.Multivariate.Dim, r.Valid)
	default:
		return fmt.Sprintf("run %s: %s", r.ID, r.Kind)
	}
}
