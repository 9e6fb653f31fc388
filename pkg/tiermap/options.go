package tiermap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/crimson-sun/tiermap/internal/config"
)

// Embedder produces vector embeddings from text. Use WithEmbedder to supply
// one instead of the local ONNX model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

type options struct {
	cfg         config.Config
	embedder    Embedder
	reasoner    Reasoner
	reasonerSet bool
}

// Option configures a Tiermap instance.
type Option func(*options)

// WithModelDir sets the directory containing the ONNX sentence encoder.
// Expects: model.onnx, vocab.txt.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.cfg.Embedding.Provider = "onnx"
		o.cfg.Embedding.ModelPath = filepath.Join(dir, "model.onnx")
		o.cfg.Embedding.VocabPath = filepath.Join(dir, "vocab.txt")
	}
}

// WithModelPaths sets explicit paths for the model and its vocabulary.
func WithModelPaths(model, vocab string) Option {
	return func(o *options) {
		o.cfg.Embedding.Provider = "onnx"
		o.cfg.Embedding.ModelPath = model
		o.cfg.Embedding.VocabPath = vocab
	}
}

// WithOpenAIEmbeddings uses a remote OpenAI-compatible /v1/embeddings
// endpoint instead of the local model.
func WithOpenAIEmbeddings(endpoint, model, apiKey string) Option {
	return func(o *options) {
		o.cfg.Embedding.Provider = "openai"
		o.cfg.Embedding.Endpoint = endpoint
		o.cfg.Embedding.Model = model
		o.cfg.Embedding.APIKey = apiKey
	}
}

// WithEmbedder supplies the embedder. Close closes it.
func WithEmbedder(e Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithTaxonomyFile loads the taxonomy from a JSON file instead of the
// built-in subset.
func WithTaxonomyFile(path string) Option {
	return func(o *options) { o.cfg.Data.TaxonomyPath = path }
}

// WithDescriptionsFile sets the domain descriptions the index is embedded from.
func WithDescriptionsFile(path string) Option {
	return func(o *options) { o.cfg.Data.DescriptionsPath = path }
}

// WithIndexDir loads a saved domain index (domains.json, embeddings.npy)
// instead of embedding descriptions at first use.
func WithIndexDir(dir string) Option {
	return func(o *options) { o.cfg.Data.IndexDir = dir }
}

// WithAnthropic ranks categories with the Anthropic Messages API.
// An empty model selects the default.
func WithAnthropic(apiKey, model string) Option {
	return func(o *options) {
		o.cfg.Reasoning.Provider = "anthropic"
		o.cfg.Reasoning.APIKey = apiKey
		if model != "" {
			o.cfg.Reasoning.Model = model
		}
		o.reasoner, o.reasonerSet = nil, false
	}
}

// WithReasoner supplies the reasoning provider.
func WithReasoner(r Reasoner) Option {
	return func(o *options) {
		o.reasoner = r
		o.reasonerSet = r != nil
	}
}

// WithoutReasoning ranks categories with local heuristics only.
func WithoutReasoning() Option {
	return func(o *options) {
		o.cfg.Reasoning.Provider = "none"
		o.reasoner, o.reasonerSet = nil, false
	}
}

// WithReasoningTimeout bounds each reasoning attempt. Default: 30s.
func WithReasoningTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.Reasoning.Timeout = d }
}

// WithReasoningRateLimit caps reasoning calls per second.
func WithReasoningRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.cfg.Reasoning.RPS = rps
		o.cfg.Reasoning.Burst = burst
	}
}

// WithMaxResults sets how many categories a result carries. Default: 2.
func WithMaxResults(n int) Option {
	return func(o *options) { o.cfg.Engine.MaxResults = n }
}

// WithMinDomainScore skips fine classification when the best domain scores
// below s. Default: 0.
func WithMinDomainScore(s float64) Option {
	return func(o *options) { o.cfg.Engine.MinDomainScore = s }
}

// WithTierDepth sets the tier offered as candidates (2-4). Default: 2.
func WithTierDepth(depth int) Option {
	return func(o *options) { o.cfg.Data.TierDepth = depth }
}

// WithConcurrency bounds ClassifyBatch. Default: 5.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.cfg.Batch.Concurrency = n
		o.cfg.Reasoning.MaxInFlight = n
	}
}

// WithExtendedProfile adds interests and language to every profile.
func WithExtendedProfile() Option {
	return func(o *options) { o.cfg.Engine.ProfileFields = "extended" }
}

func defaultOptions() options {
	return options{cfg: config.Default()}
}
