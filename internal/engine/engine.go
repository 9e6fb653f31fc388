// Package engine runs the hybrid classification pipeline: coarse domain
// detection, candidate subsetting, fine classification and assembly.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/tiermap/internal/engine/assemble"
	"github.com/crimson-sun/tiermap/internal/engine/dedup"
	"github.com/crimson-sun/tiermap/internal/engine/detector"
	"github.com/crimson-sun/tiermap/internal/engine/fine"
	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
	"github.com/crimson-sun/tiermap/internal/metrics"
	"github.com/crimson-sun/tiermap/internal/model"
)

// DefaultMaxResults is used when Options.MaxResults is zero.
const DefaultMaxResults = 2

// ProfileFields selects which reader-profile fields a result carries.
type ProfileFields string

const (
	ProfileCore     ProfileFields = "core"     // age range, score, tier
	ProfileExtended ProfileFields = "extended" // core plus interests and language
)

// Options are read once per call.
type Options struct {
	MaxResults     int
	DisableFine    bool
	MinDomainScore float64
	TierDepth      int
	Profile        ProfileFields
}

// Validate reports option values that can never work.
func (o Options) Validate() error {
	switch {
	case o.MaxResults < 0:
		return model.Configf("max results must be >= 1, got %d", o.MaxResults)
	case o.MinDomainScore < 0 || o.MinDomainScore > 1:
		return model.Configf("min domain score must be within [0,1], got %v", o.MinDomainScore)
	case o.TierDepth != 0 && (o.TierDepth < taxonomy.MinDepth || o.TierDepth > taxonomy.MaxDepth):
		return model.Configf("tier depth must be within [%d,%d], got %d", taxonomy.MinDepth, taxonomy.MaxDepth, o.TierDepth)
	}
	switch o.Profile {
	case "", ProfileCore, ProfileExtended:
	default:
		return model.Configf("unknown profile field set %q", o.Profile)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MaxResults == 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.TierDepth == 0 {
		o.TierDepth = taxonomy.DefaultDepth
	}
	if o.Profile == "" {
		o.Profile = ProfileCore
	}
	return o
}

// Engine is safe for concurrent use; a call touches no shared mutable state
// apart from the lazily loaded index and the metrics.
type Engine struct {
	detector *detector.Detector
	store    *taxonomy.Store
	fine     *fine.Classifier
	metrics  *metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine with the provided components.
func New(det *detector.Detector, store *taxonomy.Store, cls *fine.Classifier, opts ...Option) *Engine {
	e := &Engine{detector: det, store: store, fine: cls}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Classify runs the pipeline for one text. Errors are *model.StageError and
// wrap model.ErrConfiguration, model.ErrEmbeddingUnavailable or the caller's
// context error; every other failure yields a DegradedResult instead.
func (e *Engine) Classify(ctx context.Context, text string, opts Options) (model.Result, error) {
	start := time.Now()
	res, err := e.classify(ctx, text, opts, start)
	if err != nil {
		e.metrics.Failed(string(model.FailedStage(err)))
		slog.Debug("classification failed", "stage", model.FailedStage(err), "error", err)
		return nil, err
	}
	e.metrics.Classified(string(res.Method()))
	slog.Debug("classification done", "method", res.Method(), "domain", res.Common().Domain,
		"elapsed", res.Common().Elapsed)
	return res, nil
}

func (e *Engine) classify(ctx context.Context, text string, opts Options, start time.Time) (model.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if strings.TrimSpace(text) == "" {
		return nil, model.Configf("text is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, model.Fail(model.StageStart, err, nil)
	}

	slog.Debug("stage", "stage", model.StageEmbedding)
	t := time.Now()
	ranking, err := e.detector.Detect(ctx, text)
	e.metrics.ObserveStage(string(model.StageEmbedding), time.Since(t))
	if err != nil {
		return nil, err
	}

	slog.Debug("stage", "stage", model.StageDomainDetection)
	if len(ranking) == 0 {
		return nil, model.Fail(model.StageDomainDetection, model.ErrEmbeddingUnavailable,
			errors.New("domain index is empty"))
	}
	top := ranking[0]
	in := assemble.Input{
		Ranking:    ranking,
		Domain:     top.Domain,
		Score:      top.Score,
		MaxResults: opts.MaxResults,
	}

	switch {
	case opts.DisableFine:
		in.Notes = append(in.Notes, "fine classification disabled")
	case top.Score < opts.MinDomainScore:
		in.Notes = append(in.Notes, fmt.Sprintf("domain score %.3f below minimum %.3f", top.Score, opts.MinDomainScore))
	default:
		subset, out, err := e.fineStage(ctx, text, top.Domain, opts)
		if err != nil {
			return nil, err
		}
		in.Subset = subset
		in.Fine = &out
	}
	if in.Fine == nil {
		in.Profile = e.fine.Profile(text, top.Domain)
	}

	slog.Debug("stage", "stage", model.StageAssemble, "domain", top.Domain)
	in.Elapsed = time.Since(start)
	return shapeProfile(assemble.Assemble(in), opts.Profile), nil
}

func (e *Engine) fineStage(ctx context.Context, text, domain string, opts Options) ([]model.Category, fine.Outcome, error) {
	slog.Debug("stage", "stage", model.StageSubset, "domain", domain)
	t := time.Now()
	subset, err := e.store.Subset(domain, opts.TierDepth)
	e.metrics.ObserveStage(string(model.StageSubset), time.Since(t))
	if err != nil {
		slog.Info("no candidates for domain", "domain", domain, "error", err)
	}

	slog.Debug("stage", "stage", model.StageFine, "domain", domain, "candidates", len(subset))
	t = time.Now()
	out := e.fine.Classify(ctx, text, domain, subset, opts.MaxResults)
	e.metrics.ObserveStage(string(model.StageFine), time.Since(t))
	if out.Degraded && ctx.Err() != nil {
		return nil, out, model.Fail(model.StageFine, ctx.Err(), nil)
	}
	return subset, out, nil
}

// shapeProfile drops the extended profile fields unless they were requested.
func shapeProfile(r model.Result, fields ProfileFields) model.Result {
	if fields == ProfileExtended {
		return r
	}
	strip := func(o *model.Outcome) {
		o.Profile.Interests = nil
		o.Profile.Language = ""
	}
	switch v := r.(type) {
	case model.VectorOnlyResult:
		strip(&v.Outcome)
		return v
	case model.HybridResult:
		strip(&v.Outcome)
		return v
	case model.DegradedResult:
		strip(&v.Outcome)
		return v
	}
	return r
}

// BatchItem is the result for one input position.
type BatchItem struct {
	Index  int
	Result model.Result
	Err    error
}

// ClassifyBatch classifies texts with at most concurrency calls in flight.
// Identical texts are classified once. Items are indexed by input position
// and one failure never aborts the others. A concurrency below 1 fails every
// item with a configuration error before any work starts.
func (e *Engine) ClassifyBatch(ctx context.Context, texts []string, opts Options, concurrency int) []BatchItem {
	if concurrency < 1 {
		err := model.Configf("concurrency must be >= 1, got %d", concurrency)
		items := make([]BatchItem, len(texts))
		for i := range items {
			items[i] = BatchItem{Index: i, Err: err}
		}
		return items
	}
	groups := dedup.Group(texts)
	if d := groups.Duplicates(); d > 0 {
		slog.Debug("batch duplicates collapsed", "inputs", groups.Len(), "unique", len(groups.Unique))
	}

	unique := make([]BatchItem, len(groups.Unique))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, text := range groups.Unique {
		g.Go(func() error {
			res, err := e.Classify(ctx, text, opts)
			unique[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	items := dedup.Expand(groups, unique)
	for i := range items {
		items[i].Index = i
	}
	return items
}
