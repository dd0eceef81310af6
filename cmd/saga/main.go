// Command saga validates discrete Gaussian sampler outputs against their
// declared parameters. It consumes captured corpora in several text
// formats, can draw fresh samples from a built-in lattice sampler, and
// serves the same pipeline over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"saga/adapters/corpus"
	"saga/adapters/excel"
	"saga/adapters/plot"
	"saga/adapters/report"
	"saga/adapters/sampler"
	"saga/app"
	"saga/domain/gaussian"
	"saga/internal"
	"saga/internal/config"
	"saga/ports"
	"saga/ui"
)

func main() {
	envErr := godotenv.Load()
	logger := internal.NewDefaultLogger()
	if envErr != nil {
		logger.Debug("no .env file found, using system environment")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	appCfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration: %v", err)
		os.Exit(1)
	}
	cfg := appCfg.Gaussian
	svc := app.NewValidationService(cfg, logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "univariate":
		err = runUnivariate(ctx, svc, os.Args[2:])
	case "multivariate":
		err = runMultivariate(ctx, svc, os.Args[2:])
	case "csv":
		err = runCSV(ctx, svc, os.Args[2:])
	case "selftest":
		err = runSelfTest(ctx, svc, cfg, os.Args[2:])
	case "serve":
		err = runServe(ctx, svc, logger, appCfg.Server, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: saga <command> [flags]

commands:
  univariate    validate a univariate corpus file (mu/sigma headers + samples)
  multivariate  validate a multivariate corpus file (one vector per line)
  csv           validate a single-column csv of integer samples
  selftest      draw from the built-in lattice sampler and validate the draws
  serve         run the validation HTTP server`)
}

func runUnivariate(ctx context.Context, svc *app.ValidationService, args []string) error {
	fs := flag.NewFlagSet("univariate", flag.ExitOnError)
	in := fs.String("in", "", "corpus file (required)")
	format := fs.String("format", "text", "output format: text, markdown, html, xlsx, plot")
	out := fs.String("out", "", "output file (defaults to stdout for text formats)")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("univariate: -in is required")
	}
	blocks, err := corpus.ParseUnivariateFile(*in)
	if err != nil {
		return err
	}
	run, err := svc.ValidateUnivariate(ctx, *in, blocks)
	if err != nil {
		return err
	}
	if err := writeRun(run, *format, *out); err != nil {
		return err
	}
	if !run.Valid {
		return fmt.Errorf("%s", run.Summary())
	}
	return nil
}

func runMultivariate(ctx context.Context, svc *app.ValidationService, args []string) error {
	fs := flag.NewFlagSet("multivariate", flag.ExitOnError)
	in := fs.String("in", "", "corpus file (required)")
	sigma := fs.Float64("sigma", 0, "expected sigma (default: estimated from the corpus)")
	format := fs.String("format", "text", "output format: text, markdown, html, xlsx, plot")
	out := fs.String("out", "", "output file (defaults to stdout for text formats)")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("multivariate: -in is required")
	}
	parsed, err := corpus.ParseMultivariateFile(*in)
	if err != nil {
		return err
	}
	expected := parsed.Sigma
	if *sigma > 0 {
		expected = *sigma
	}
	run, err := svc.ValidateMultivariate(ctx, *in, expected, parsed.Vectors)
	if err != nil {
		return err
	}
	if err := writeRun(run, *format, *out); err != nil {
		return err
	}
	if !run.Valid {
		return fmt.Errorf("%s", run.Summary())
	}
	return nil
}

func runCSV(ctx context.Context, svc *app.ValidationService, args []string) error {
	fs := flag.NewFlagSet("csv", flag.ExitOnError)
	in := fs.String("in", "", "csv file with one integer sample per row (required)")
	center := fs.Float64("mu", 0, "expected center")
	sigma := fs.Float64("sigma", 1.5, "expected sigma")
	format := fs.String("format", "text", "output format: text, markdown, html, xlsx, plot")
	out := fs.String("out", "", "output file (defaults to stdout for text formats)")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("csv: -in is required")
	}
	samples, err := corpus.ParseCSVFile(*in)
	if err != nil {
		return err
	}
	run, err := svc.ValidateUnivariate(ctx, *in, []corpus.UnivariateSample{{
		Center:  *center,
		Sigma:   *sigma,
		Samples: samples,
	}})
	if err != nil {
		return err
	}
	if err := writeRun(run, *format, *out); err != nil {
		return err
	}
	if !run.Valid {
		return fmt.Errorf("%s", run.Summary())
	}
	return nil
}

func runSelfTest(ctx context.Context, svc *app.ValidationService, cfg gaussian.Config, args []string) error {
	fs := flag.NewFlagSet("selftest", flag.ExitOnError)
	center := fs.Float64("mu", 0, "center to draw at (integer for the lattice sampler)")
	sigma := fs.Float64("sigma", 1.5, "sigma to draw at")
	n := fs.Int("n", 100000, "number of samples")
	dim := fs.Int("dim", 0, "vector dimension; 0 runs the univariate test")
	seed := fs.String("seed", "", "seed string for deterministic draws")
	format := fs.String("format", "text", "output format: text, markdown, html, xlsx, plot")
	out := fs.String("out", "", "output file (defaults to stdout for text formats)")
	fs.Parse(args)

	var src *sampler.LatticeSampler
	var err error
	if *seed != "" {
		src, err = sampler.NewSeededLatticeSampler([]byte(*seed), cfg)
	} else {
		src, err = sampler.NewLatticeSampler(cfg)
	}
	if err != nil {
		return err
	}
	run, err := svc.SelfTest(ctx, src, app.SelfTestParams{
		Center: *center,
		Sigma:  *sigma,
		N:      *n,
		Dim:    *dim,
	})
	if err != nil {
		return err
	}
	if err := writeRun(run, *format, *out); err != nil {
		return err
	}
	if !run.Valid {
		return fmt.Errorf("%s", run.Summary())
	}
	return nil
}

func runServe(ctx context.Context, svc *app.ValidationService, logger *internal.Logger, serverCfg config.ServerConfig, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":"+serverCfg.Port, "listen address")
	fs.Parse(args)

	server := &http.Server{
		Addr:    *addr,
		Handler: ui.NewServer(svc, logger),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", *addr)
		errCh <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return server.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// writeRun renders a finished run in the requested format. Formats that
// produce binary or standalone documents require -out.
func writeRun(run *app.RunReport, format, out string) error {
	needsFile := format == "xlsx" || format == "plot"
	if needsFile && out == "" {
		return fmt.Errorf("format %s requires -out", format)
	}

	var w *os.File
	if out == "" {
		w = os.Stdout
	} else {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "text":
		text := report.NewTextRenderer()
		for _, item := range run.Items {
			if item.Err != "" {
				fmt.Fprintf(w, "block %d failed: %s\n", item.Index, item.Err)
				continue
			}
			if err := text.RenderUnivariate(w, item.Result); err != nil {
				return err
			}
		}
		if run.Multivariate != nil {
			if err := text.RenderMultivariate(w, run.Multivariate); err != nil {
				return err
			}
		}
		fmt.Fprintln(w, run.Summary())
		return nil
	case "markdown":
		return report.RenderRunMarkdown(w, run)
	case "html":
		return report.RenderRunHTML(w, run)
	case "xlsx":
		return renderSingle(run, excel.NewWriter(), w)
	case "plot":
		return renderSingle(run, plot.NewRenderer(), w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// renderSingle renders the multivariate result, or the first successful
// univariate block, into single-document formats like workbooks and
// charts.
func renderSingle(run *app.RunReport, r ports.Renderer, w io.Writer) error {
	if run.Multivariate != nil {
		return r.RenderMultivariate(w, run.Multivariate)
	}
	for _, item := range run.Items {
		if item.Result != nil {
			return r.RenderUnivariate(w, item.Result)
		}
	}
	return fmt.Errorf("run %s has no renderable result", run.ID)
}
