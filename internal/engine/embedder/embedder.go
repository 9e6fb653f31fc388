package embedder

import (
	"context"
	"fmt"
)

// Embedder produces vector embeddings from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// Config locates the files a local ONNX embedder needs.
type Config struct {
	ModelPath string
	VocabPath string
	// LibPath is the onnxruntime shared library. Defaults to
	// libonnxruntime.so next to the model.
	LibPath   string
	MaxSeqLen int
	BatchSize int
	Threads   int
	// Lowercase folds case before WordPiece lookup (uncased vocabularies).
	Lowercase bool
}

// ONNXEmbedder runs a BERT-style sentence encoder locally: WordPiece
// tokenization, ONNX inference, masked mean pooling, L2 normalization.
type ONNXEmbedder struct {
	session   *onnxSession
	tok       *tokenizer
	batchSize int
}

// NewONNX loads the model and vocabulary.
func NewONNX(cfg Config) (*ONNXEmbedder, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = defaultMaxSeqLen
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}

	tok, err := newTokenizer(cfg.VocabPath, cfg.MaxSeqLen, cfg.Lowercase)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	sess, err := newONNXSession(cfg.ModelPath, cfg.LibPath, cfg.Threads)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	return &ONNXEmbedder{session: sess, tok: tok, batchSize: cfg.BatchSize}, nil
}

// Dim returns the embedding dimensionality.
func (e *ONNXEmbedder) Dim() int {
	return int(e.session.embedDim)
}

// Embed produces a single embedding vector for the given text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in chunks of the configured batch size, checking
// ctx between chunks. ONNX inference itself is not interruptible.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}
		end := min(start+e.batchSize, len(texts))

		batch := e.tok.tokenizeBatch(texts[start:end])
		hidden, err := e.session.infer(batch)
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}

		dim := e.session.embedDim
		pooled := meanPool(hidden, batch.attentionMask, batch.batchSize, batch.seqLen, dim)
		for i := int64(0); i < batch.batchSize; i++ {
			results = append(results, l2Normalize(pooled[i*dim:(i+1)*dim]))
		}
	}
	return results, nil
}

// Close releases ONNX Runtime resources.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		return e.session.close()
	}
	return nil
}
