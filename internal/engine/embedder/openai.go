package embedder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crimson-sun/tiermap/internal/httpclient"
)

// OpenAIConfig configures a remote OpenAI-compatible /v1/embeddings
// endpoint (OpenAI, vLLM, Ollama, text-embeddings-inference).
type OpenAIConfig struct {
	Endpoint  string // base URL without /v1
	Model     string
	APIKey    string
	BatchSize int
	Timeout   time.Duration
}

// OpenAIEmbedder calls a remote embeddings API.
type OpenAIEmbedder struct {
	client    *httpclient.Client
	model     string
	batchSize int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewOpenAI creates a remote embedder.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedder: openai endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedder: openai model is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	var opts []httpclient.Option
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}
	return &OpenAIEmbedder{
		client:    httpclient.New(strings.TrimRight(cfg.Endpoint, "/"), cfg.APIKey, opts...),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}, nil
}

// Embed embeds a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch splits texts into API-sized batches and returns vectors in
// input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.call(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedder: batch [%d:%d]: %w", start, end, err)
		}
		copy(out[start:end], vecs)
	}
	return out, nil
}

func (e *OpenAIEmbedder) call(ctx context.Context, texts []string) ([][]float32, error) {
	var resp embedResponse
	if err := e.client.PostJSON(ctx, "/v1/embeddings", embedRequest{Model: e.model, Input: texts}, &resp); err != nil {
		return nil, err
	}

	// The API may return data in any order; index is authoritative.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(vecs) {
			vecs[d.Index] = d.Embedding
		}
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return vecs, nil
}

// Close is a no-op.
func (e *OpenAIEmbedder) Close() error { return nil }
