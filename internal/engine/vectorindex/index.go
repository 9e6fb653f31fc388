package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/crimson-sun/tiermap/internal/engine/embedder"
	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
	"github.com/crimson-sun/tiermap/internal/model"
)

// File names written by Save and expected by LoadDir.
const (
	DomainsFile    = "domains.json"
	EmbeddingsFile = "embeddings.npy"
)

// Index holds one L2-normalized vector per top-level domain.
// Read-only after construction.
type Index struct {
	domains []string
	vectors [][]float32
	dim     int
}

// New validates and normalizes the embeddings. Domain names must be unique
// and every vector must share the same non-zero dimensionality.
func New(embeddings []model.DomainEmbedding) (*Index, error) {
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("vectorindex: no domain embeddings")
	}
	idx := &Index{dim: len(embeddings[0].Vector)}
	if idx.dim == 0 {
		return nil, fmt.Errorf("vectorindex: domain %q has an empty vector", embeddings[0].Domain)
	}
	seen := make(map[string]bool, len(embeddings))
	for _, e := range embeddings {
		if e.Domain == "" {
			return nil, fmt.Errorf("vectorindex: embedding without domain name")
		}
		if seen[e.Domain] {
			return nil, fmt.Errorf("vectorindex: duplicate domain %q", e.Domain)
		}
		seen[e.Domain] = true
		if len(e.Vector) != idx.dim {
			return nil, fmt.Errorf("vectorindex: domain %q has dim %d, want %d", e.Domain, len(e.Vector), idx.dim)
		}
		idx.domains = append(idx.domains, e.Domain)
		idx.vectors = append(idx.vectors, normalize(e.Vector))
	}
	return idx, nil
}

// Len returns the number of domains.
func (x *Index) Len() int { return len(x.domains) }

// Dim returns the vector dimensionality.
func (x *Index) Dim() int { return x.dim }

// Domains returns domain names in index order.
func (x *Index) Domains() []string {
	out := make([]string, len(x.domains))
	copy(out, x.domains)
	return out
}

// Embeddings returns the normalized vectors paired with their domains.
func (x *Index) Embeddings() []model.DomainEmbedding {
	out := make([]model.DomainEmbedding, len(x.domains))
	for i := range x.domains {
		out[i] = model.DomainEmbedding{Domain: x.domains[i], Vector: x.vectors[i]}
	}
	return out
}

// Similarities returns the cosine similarity of vec against every domain, in
// index order. vec need not be normalized.
func (x *Index) Similarities(vec []float32) ([]float64, error) {
	if len(vec) != x.dim {
		return nil, fmt.Errorf("vectorindex: query dim %d, index dim %d", len(vec), x.dim)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	out := make([]float64, len(x.vectors))
	if norm == 0 {
		return out, nil
	}
	for i, dv := range x.vectors {
		var dot float64
		for j, v := range dv {
			dot += float64(v) * float64(vec[j])
		}
		out[i] = dot / norm
	}
	return out, nil
}

// Build embeds each domain description and indexes the result.
func Build(ctx context.Context, emb embedder.Embedder, descriptions []taxonomy.DomainDescription) (*Index, error) {
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("vectorindex: no domain descriptions")
	}
	texts := make([]string, len(descriptions))
	for i, d := range descriptions {
		texts[i] = d.Description
	}
	vecs, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: build: %w", err)
	}
	if len(vecs) != len(descriptions) {
		return nil, fmt.Errorf("vectorindex: build: got %d vectors for %d domains", len(vecs), len(descriptions))
	}
	embs := make([]model.DomainEmbedding, len(descriptions))
	for i, d := range descriptions {
		embs[i] = model.DomainEmbedding{Domain: d.Name, Vector: vecs[i]}
	}
	return New(embs)
}

// Load reads a domain name list and a vector matrix. The matrix may be a
// NumPy .npy file or a JSON array of arrays, chosen by extension.
func Load(domainsPath, vectorsPath string) (*Index, error) {
	raw, err := os.ReadFile(domainsPath)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: %w", err)
	}
	var domains []string
	if err := json.Unmarshal(raw, &domains); err != nil {
		return nil, fmt.Errorf("vectorindex: parse %s: %w", filepath.Base(domainsPath), err)
	}

	var rows [][]float32
	if filepath.Ext(vectorsPath) == ".npy" {
		rows, err = readNPY(vectorsPath)
	} else {
		rows, err = readJSONMatrix(vectorsPath)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) != len(domains) {
		return nil, fmt.Errorf("vectorindex: %d domains but %d vectors", len(domains), len(rows))
	}

	embs := make([]model.DomainEmbedding, len(domains))
	for i := range domains {
		embs[i] = model.DomainEmbedding{Domain: domains[i], Vector: rows[i]}
	}
	return New(embs)
}

// LoadDir loads the files written by Save.
func LoadDir(dir string) (*Index, error) {
	return Load(filepath.Join(dir, DomainsFile), filepath.Join(dir, EmbeddingsFile))
}

// Save writes domains.json and embeddings.npy into dir.
func (x *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vectorindex: %w", err)
	}
	names, err := json.MarshalIndent(x.domains, "", "  ")
	if err != nil {
		return fmt.Errorf("vectorindex: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DomainsFile), names, 0o644); err != nil {
		return fmt.Errorf("vectorindex: %w", err)
	}
	if err := writeNPY(filepath.Join(dir, EmbeddingsFile), x.vectors, x.dim); err != nil {
		return fmt.Errorf("vectorindex: %w", err)
	}
	return nil
}

func readJSONMatrix(path string) ([][]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: %w", err)
	}
	var rows [][]float32
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("vectorindex: parse %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
