package detector

import (
	"context"
	"fmt"
	"sort"

	"github.com/crimson-sun/tiermap/internal/engine/compactor"
	"github.com/crimson-sun/tiermap/internal/engine/embedder"
	"github.com/crimson-sun/tiermap/internal/engine/vectorindex"
	"github.com/crimson-sun/tiermap/internal/model"
)

// Detector ranks top-level domains by cosine similarity between the text
// embedding and each domain's precomputed vector.
type Detector struct {
	emb   embedder.Embedder
	index *vectorindex.Handle
}

// New creates a Detector. The index is loaded on first use.
func New(emb embedder.Embedder, index *vectorindex.Handle) *Detector {
	return &Detector{emb: emb, index: index}
}

// Detect embeds text and ranks every domain. Failures to embed or to load
// the index are reported as ErrEmbeddingUnavailable at the embedding stage;
// there is no fallback ranking.
func (d *Detector) Detect(ctx context.Context, text string) ([]model.DomainScore, error) {
	idx, err := d.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	vec, err := d.emb.Embed(ctx, compactor.Prepare(text, compactor.EmbeddingLimit))
	if err != nil {
		return nil, model.Fail(model.StageEmbedding, model.ErrEmbeddingUnavailable, err)
	}
	return rank(idx, vec)
}

// DetectVector ranks domains for an already computed embedding.
func (d *Detector) DetectVector(ctx context.Context, vec []float32) ([]model.DomainScore, error) {
	idx, err := d.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return rank(idx, vec)
}

func (d *Detector) loadIndex(ctx context.Context) (*vectorindex.Index, error) {
	idx, err := d.index.Get(ctx)
	if err != nil {
		return nil, model.Fail(model.StageEmbedding, model.ErrEmbeddingUnavailable, fmt.Errorf("load vector index: %w", err))
	}
	return idx, nil
}

// rank scores vec against every domain. Scores are clamped into [0,1];
// ties are broken by domain name.
func rank(idx *vectorindex.Index, vec []float32) ([]model.DomainScore, error) {
	if len(vec) == 0 {
		return nil, model.Fail(model.StageEmbedding, model.ErrEmbeddingUnavailable, fmt.Errorf("empty embedding"))
	}
	sims, err := idx.Similarities(vec)
	if err != nil {
		return nil, model.Fail(model.StageEmbedding, model.ErrEmbeddingUnavailable, err)
	}

	domains := idx.Domains()
	out := make([]model.DomainScore, len(domains))
	for i, name := range domains {
		out[i] = model.DomainScore{Domain: name, Score: clamp01(sims[i])}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Domain < out[j].Domain
	})
	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
