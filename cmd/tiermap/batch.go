package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/tiermap/internal/app"
	"github.com/crimson-sun/tiermap/internal/batch"
	"github.com/crimson-sun/tiermap/internal/metrics"
	"github.com/crimson-sun/tiermap/internal/model"
	"github.com/crimson-sun/tiermap/internal/source"
)

type batchFlags struct {
	list        string
	concurrency int
	output      string
	path        string
	format      string
	detail      string
	metricsAddr string
	maxResults  int
	noFine      bool
}

func (c *cli) batchCmd() *cobra.Command {
	var f batchFlags
	cmd := &cobra.Command{
		Use:   "batch [refs...]",
		Short: "Classify many files, URLs or texts",
		Long: "Each ref is a path, an http(s) URL or text:<literal>. Refs may also be listed " +
			"one per line in --list (\"-\" reads stdin; blank lines and # comments are skipped). " +
			"Results are written in input order; a failing ref becomes an error record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.list, "list", "", "file with one ref per line")
	fl.IntVar(&f.concurrency, "concurrency", 0, "refs processed at once")
	fl.StringVar(&f.output, "output", "", "comma-separated sinks: stdout, file, csv, webhook, sqlite")
	fl.StringVar(&f.path, "path", "", "destination path for the file or csv sink")
	fl.StringVar(&f.format, "format", "", "stdout rendering: json, pretty or text")
	fl.StringVar(&f.detail, "detail", "", "minimal or full")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	fl.IntVar(&f.maxResults, "max-results", 0, "number of categories per result")
	fl.BoolVar(&f.noFine, "no-fine", false, "skip fine classification (vector-only)")
	return cmd
}

func (c *cli) runBatch(cmd *cobra.Command, args []string, f batchFlags) error {
	refs := append([]string(nil), args...)
	if f.list != "" {
		listed, err := readRefList(f.list, cmd.InOrStdin())
		if err != nil {
			return err
		}
		refs = append(refs, listed...)
	}
	if len(refs) == 0 {
		return model.Configf("no refs given: pass them as arguments or with --list")
	}

	cfg := c.cfg
	if f.concurrency != 0 {
		cfg.Batch.Concurrency = f.concurrency
	}
	if f.output != "" {
		cfg.Output.Sink = f.output
	}
	if f.path != "" {
		cfg.Output.Path = f.path
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.detail != "" {
		cfg.Output.Detail = f.detail
	}
	if f.metricsAddr != "" {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.maxResults != 0 {
		cfg.Engine.MaxResults = f.maxResults
	}
	if f.noFine {
		cfg.Engine.DisableFine = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	m := metrics.New()
	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, m)
		defer stop()
	}

	a, err := app.Build(cfg, app.WithMetrics(m))
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := app.OpenOutput(ctx, cfg.Output)
	if err != nil {
		return err
	}

	r := batch.New(source.NewFetcher(source.Config{}), a.Engine, out,
		batch.WithConcurrency(cfg.Batch.Concurrency),
		batch.WithEngineOptions(a.Options),
		batch.WithMetrics(m),
	)
	sum, runErr := r.Run(ctx, refs)
	if err := r.Close(); err != nil && runErr == nil {
		runErr = err
	}
	printSummary(cmd.ErrOrStderr(), sum)
	return runErr
}

// readRefList reads one ref per line from path, or from stdin when path is "-".
func readRefList(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, model.Configf("open ref list: %v", err)
		}
		defer fh.Close()
		r = fh
	}
	var refs []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ref list: %w", err)
	}
	return refs, nil
}

// serveMetrics exposes m on addr/metrics until the returned stop is called.
func serveMetrics(addr string, m *metrics.Recorder) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printSummary(w io.Writer, s batch.Summary) {
	fmt.Fprintf(w, "processed %d refs in %s: %d succeeded, %d failed\n",
		s.Total, s.Elapsed.Round(time.Millisecond), s.Succeeded, s.Failed)
	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		fmt.Fprintf(w, "  %-12s %d\n", m, s.ByMethod[model.Method(m)])
	}
}
