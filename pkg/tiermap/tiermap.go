package tiermap

import (
	"context"
	"fmt"

	"github.com/crimson-sun/tiermap/internal/app"
	"github.com/crimson-sun/tiermap/internal/model"
)

// Tiermap is a taxonomy classifier. Safe for concurrent use.
type Tiermap struct {
	app         *app.App
	concurrency int
}

// New creates a Tiermap instance. Model files are opened here; the domain
// index is loaded or embedded on the first classification.
func New(opts ...Option) (*Tiermap, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := app.EngineOptions(o.cfg.Engine, o.cfg.Data).Validate(); err != nil {
		return nil, fmt.Errorf("tiermap: %w", err)
	}
	if o.cfg.Batch.Concurrency < 1 {
		return nil, fmt.Errorf("tiermap: %w", model.Configf("concurrency must be at least 1, got %d", o.cfg.Batch.Concurrency))
	}

	var build []app.Option
	if o.embedder != nil {
		build = append(build, app.WithEmbedder(o.embedder))
	}
	switch {
	case o.reasonerSet:
		build = append(build, app.WithReasoner(adaptReasoner(o.reasoner)))
	case o.cfg.Reasoning.Provider == "none":
		build = append(build, app.WithReasoner(nil))
	}

	a, err := app.Build(o.cfg, build...)
	if err != nil {
		return nil, fmt.Errorf("tiermap: %w", err)
	}
	return &Tiermap{app: a, concurrency: o.cfg.Batch.Concurrency}, nil
}

// Classify classifies one text. Errors are ErrConfiguration (empty text) or
// ErrEmbeddingUnavailable; reasoning problems degrade the result instead.
func (t *Tiermap) Classify(ctx context.Context, text string) (Result, error) {
	res, err := t.app.Engine.Classify(ctx, text, t.app.Options)
	if err != nil {
		return Result{}, err
	}
	return resultFromRecord(model.ToRecord(res)), nil
}

// ClassifyBatch classifies texts concurrently. Items are in input order and
// one failure never aborts the others. Identical texts are classified once.
func (t *Tiermap) ClassifyBatch(ctx context.Context, texts []string) []Item {
	batch := t.app.Engine.ClassifyBatch(ctx, texts, t.app.Options, t.concurrency)
	items := make([]Item, len(batch))
	for i, b := range batch {
		items[i] = Item{Index: b.Index, Err: b.Err}
		if b.Err == nil {
			res := resultFromRecord(model.ToRecord(b.Result))
			items[i].Result = &res
		}
	}
	return items
}

// Close releases model resources.
// Must be called when the Tiermap instance is no longer needed.
func (t *Tiermap) Close() error {
	return t.app.Close()
}
