package embedder

import (
	"context"
	"time"
)

type timeoutEmbedder struct {
	Embedder
	d time.Duration
}

// WithTimeout bounds every Embed and EmbedBatch call on emb. A non-positive
// duration returns emb unchanged.
func WithTimeout(emb Embedder, d time.Duration) Embedder {
	if d <= 0 {
		return emb
	}
	return &timeoutEmbedder{Embedder: emb, d: d}
}

func (t *timeoutEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Embedder.Embed(ctx, text)
}

func (t *timeoutEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Embedder.EmbedBatch(ctx, texts)
}
