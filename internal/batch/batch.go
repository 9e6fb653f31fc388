// Package batch drives many references through fetch, classification and
// output in one run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/tiermap/internal/engine"
	"github.com/crimson-sun/tiermap/internal/engine/compactor"
	"github.com/crimson-sun/tiermap/internal/metrics"
	"github.com/crimson-sun/tiermap/internal/model"
	"github.com/crimson-sun/tiermap/internal/output"
	"github.com/crimson-sun/tiermap/internal/source"
)

// DefaultConcurrency matches the classic batch semaphore size.
const DefaultConcurrency = 5

// Fetcher turns a reference into text. *source.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (source.Document, error)
}

// Classifier classifies one text. *engine.Engine satisfies it.
type Classifier interface {
	Classify(ctx context.Context, text string, opts engine.Options) (model.Result, error)
}

// Summary counts what a run produced.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByMethod  map[model.Method]int
	Elapsed   time.Duration
}

func (s *Summary) record(env output.Envelope) {
	if env.Err != nil || env.Record == nil {
		s.Failed++
		return
	}
	s.Succeeded++
	s.ByMethod[env.Record.Method]++
}

// Runner connects a fetcher, a classifier and an output.
type Runner struct {
	fetcher     Fetcher
	classifier  Classifier
	output      output.Output
	concurrency int
	opts        engine.Options
	metrics     *metrics.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds how many references are fetched and classified at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithEngineOptions sets the per-call engine options.
func WithEngineOptions(o engine.Options) Option {
	return func(r *Runner) { r.opts = o }
}

// WithMetrics records per-item outcomes.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// New creates a Runner from the given components.
func New(f Fetcher, c Classifier, out output.Output, opts ...Option) *Runner {
	r := &Runner{
		fetcher:     f,
		classifier:  c,
		output:      out,
		concurrency: DefaultConcurrency,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run processes refs and writes one envelope per ref in input order. A
// failing ref becomes an error envelope; only an output failure or
// cancellation stops the run early.
func (r *Runner) Run(ctx context.Context, refs []string) (Summary, error) {
	start := time.Now()
	sum := Summary{Total: len(refs), ByMethod: make(map[model.Method]int)}
	if len(refs) == 0 {
		return sum, nil
	}

	work, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan output.Envelope, r.concurrency)
	go func() {
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, ref := range refs {
			if work.Err() != nil {
				break
			}
			g.Go(func() error {
				done <- r.process(work, i, ref)
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	seq := newSequencer()
	var writeErr error
	for env := range done {
		for _, ready := range seq.push(env) {
			if writeErr != nil || ctx.Err() != nil {
				continue
			}
			if err := r.output.Write(ctx, ready); err != nil {
				writeErr = fmt.Errorf("batch: write item %d: %w", ready.Index, err)
				cancel()
				continue
			}
			sum.record(ready)
			r.metrics.BatchItem(ready.Err == nil)
		}
	}
	sum.Elapsed = time.Since(start)

	if writeErr != nil {
		return sum, writeErr
	}
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("batch: %w", err)
	}
	slog.Info("batch complete",
		"total", sum.Total,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}

func (r *Runner) process(ctx context.Context, i int, ref string) output.Envelope {
	env := output.Envelope{Index: i, Ref: ref}
	doc, err := r.fetcher.Fetch(ctx, ref)
	if err != nil {
		env.Err = fmt.Errorf("fetch: %w", err)
		slog.Warn("batch fetch failed", "index", i, "ref", ref, "error", err)
		return env
	}
	env.Preview = compactor.Summary(doc.Text)

	res, err := r.classifier.Classify(ctx, doc.Text, r.opts)
	if err != nil {
		env.Err = err
		slog.Warn("batch classify failed", "index", i, "ref", ref, "stage", model.FailedStage(err), "error", err)
		return env
	}
	rec := model.ToRecord(res)
	env.Record = &rec
	return env
}

// Close shuts down the output.
func (r *Runner) Close() error {
	return r.output.Close()
}
