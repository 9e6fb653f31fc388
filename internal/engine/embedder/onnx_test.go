package embedder

import (
	"context"
	"math"
	"os"
	"testing"
)

const (
	testModelPath = "../../../models/model_quantized.onnx"
	testVocabPath = "../../../models/vocab.txt"
)

func skipIfNoModel(t *testing.T) {
	t.Helper()
	for _, p := range []string{testModelPath, testVocabPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Skip("model files not found; run 'make download-model' first")
		}
	}
}

func testEmbedder(t *testing.T) *ONNXEmbedder {
	t.Helper()
	skipIfNoModel(t)
	e, err := NewONNX(Config{ModelPath: testModelPath, VocabPath: testVocabPath, Lowercase: true, BatchSize: 2})
	if err != nil {
		t.Fatalf("NewONNX() error: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestONNXEmbedUnitLength(t *testing.T) {
	e := testEmbedder(t)
	vec, err := e.Embed(context.Background(), "機械学習モデルの推論を高速化する")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vec) != e.Dim() {
		t.Fatalf("len = %d, want %d", len(vec), e.Dim())
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("norm² = %f, want 1", sum)
	}
}

func TestONNXBatchMatchesSingle(t *testing.T) {
	e := testEmbedder(t)
	texts := []string{"stock market outlook", "家庭菜園の始め方", "new electric SUV review"}
	batch, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("got %d vectors", len(batch))
	}
	single, err := e.Embed(context.Background(), texts[2])
	if err != nil {
		t.Fatal(err)
	}
	for i := range single {
		if math.Abs(float64(single[i]-batch[2][i])) > 1e-3 {
			t.Fatalf("dim %d: single %f vs batch %f", i, single[i], batch[2][i])
		}
	}
}

func TestONNXEmbedBatchCancelled(t *testing.T) {
	e := testEmbedder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.EmbedBatch(ctx, []string{"x"}); err == nil {
		t.Error("expected cancellation error")
	}
}
