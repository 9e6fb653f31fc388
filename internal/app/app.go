// Package app assembles an engine and its sinks from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/tiermap/internal/config"
	"github.com/crimson-sun/tiermap/internal/engine"
	"github.com/crimson-sun/tiermap/internal/engine/detector"
	"github.com/crimson-sun/tiermap/internal/engine/embedder"
	"github.com/crimson-sun/tiermap/internal/engine/fine"
	"github.com/crimson-sun/tiermap/internal/engine/heuristic"
	"github.com/crimson-sun/tiermap/internal/engine/reasoner"
	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
	"github.com/crimson-sun/tiermap/internal/engine/vectorindex"
	"github.com/crimson-sun/tiermap/internal/metrics"
)

// App holds the wired components for one process.
type App struct {
	Engine   *engine.Engine
	Store    *taxonomy.Store
	Embedder embedder.Embedder
	Index    *vectorindex.Handle
	Metrics  *metrics.Recorder
	Options  engine.Options
}

type buildOptions struct {
	embedder    embedder.Embedder
	reasoner    reasoner.Reasoner
	reasonerSet bool
	metrics     *metrics.Recorder
}

// Option overrides a component Build would otherwise construct.
type Option func(*buildOptions)

// WithEmbedder uses emb instead of the configured provider. Close on the App
// still closes it.
func WithEmbedder(emb embedder.Embedder) Option {
	return func(o *buildOptions) { o.embedder = emb }
}

// WithReasoner uses r instead of the configured provider. A nil r disables
// reasoning.
func WithReasoner(r reasoner.Reasoner) Option {
	return func(o *buildOptions) {
		o.reasoner = r
		o.reasonerSet = true
	}
}

// WithMetrics records engine metrics on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *buildOptions) { o.metrics = m }
}

// Build wires the engine described by cfg. The domain index is not loaded
// here; the first classification loads or embeds it.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, o := range opts {
		o(&bo)
	}

	store, err := LoadStore(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	emb := bo.embedder
	if emb == nil {
		emb, err = NewEmbedder(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	emb = embedder.WithTimeout(emb, cfg.Embedding.Timeout)

	handle := vectorindex.NewHandle(indexLoader(cfg.Data, store, emb))

	r := bo.reasoner
	if !bo.reasonerSet {
		r = NewReasoner(cfg.Reasoning)
	}

	fineOpts := []fine.Option{
		fine.WithMaxInFlight(cfg.Reasoning.MaxInFlight),
		fine.WithTimeout(cfg.Reasoning.Timeout),
		fine.WithRateLimit(cfg.Reasoning.RPS, cfg.Reasoning.Burst),
		fine.WithMetrics(bo.metrics),
	}
	cls := fine.New(r, heuristic.New(), fineOpts...)

	eng := engine.New(detector.New(emb, handle), store, cls, engine.WithMetrics(bo.metrics))

	return &App{
		Engine:   eng,
		Store:    store,
		Embedder: emb,
		Index:    handle,
		Metrics:  bo.metrics,
		Options:  EngineOptions(cfg.Engine, cfg.Data),
	}, nil
}

// EngineOptions converts configuration into per-call engine options.
func EngineOptions(e config.EngineConfig, d config.DataConfig) engine.Options {
	return engine.Options{
		MaxResults:     e.MaxResults,
		DisableFine:    e.DisableFine,
		MinDomainScore: e.MinDomainScore,
		TierDepth:      d.TierDepth,
		Profile:        engine.ProfileFields(e.ProfileFields),
	}
}

// Close releases the embedder.
func (a *App) Close() error {
	if a.Embedder == nil {
		return nil
	}
	return a.Embedder.Close()
}

// NewEmbedder constructs the configured embedding provider.
func NewEmbedder(cfg config.EmbeddingConfig) (embedder.Embedder, error) {
	switch cfg.Provider {
	case "onnx", "":
		return embedder.NewONNX(embedder.Config{
			ModelPath: cfg.ModelPath,
			VocabPath: cfg.VocabPath,
			LibPath:   cfg.LibPath,
			Threads:   cfg.Threads,
			Lowercase: cfg.Lowercase,
		})
	case "openai":
		return embedder.NewOpenAI(embedder.OpenAIConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewReasoner constructs the configured reasoning provider, or nil when
// reasoning is off.
func NewReasoner(cfg config.ReasoningConfig) reasoner.Reasoner {
	if cfg.Provider != "anthropic" {
		return nil
	}
	if cfg.APIKey == "" {
		slog.Warn("no reasoning API key set; fine classification will use heuristics")
	}
	return reasoner.NewAnthropic(reasoner.AnthropicConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
	})
}

// LoadStore loads the configured taxonomy, or the built-in one.
func LoadStore(d config.DataConfig) (*taxonomy.Store, error) {
	if d.TaxonomyPath == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.Load(d.TaxonomyPath)
}

// Descriptions returns the domain descriptions an index is built from:
// the configured file, the built-in set for the built-in taxonomy, or
// descriptions derived from the loaded store.
func Descriptions(d config.DataConfig, store *taxonomy.Store) ([]taxonomy.DomainDescription, error) {
	switch {
	case d.DescriptionsPath != "":
		return taxonomy.LoadDomainDescriptions(d.DescriptionsPath)
	case d.TaxonomyPath == "":
		return taxonomy.DefaultDescriptions(), nil
	default:
		return store.Describe(), nil
	}
}

// indexLoader reads a saved index when IndexDir is set and embeds the
// descriptions otherwise.
func indexLoader(d config.DataConfig, store *taxonomy.Store, emb embedder.Embedder) vectorindex.Loader {
	return func(ctx context.Context) (*vectorindex.Index, error) {
		if d.IndexDir != "" {
			idx, err := vectorindex.LoadDir(d.IndexDir)
			if err != nil {
				return nil, err
			}
			if missing := missingDomains(idx, store); len(missing) > 0 {
				slog.Warn("index has no vector for some taxonomy domains", "domains", missing)
			}
			return idx, nil
		}
		descs, err := Descriptions(d, store)
		if err != nil {
			return nil, err
		}
		slog.Info("embedding domain descriptions", "domains", len(descs))
		idx, err := vectorindex.Build(ctx, emb, descs)
		if err != nil {
			return nil, fmt.Errorf("build domain index: %w", err)
		}
		return idx, nil
	}
}

func missingDomains(idx *vectorindex.Index, store *taxonomy.Store) []string {
	have := make(map[string]bool, idx.Len())
	for _, d := range idx.Domains() {
		have[d] = true
	}
	var missing []string
	for _, d := range store.Domains() {
		if !have[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
