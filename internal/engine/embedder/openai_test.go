package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIEmbedBatchReassemblesByIndex(t *testing.T) {
	var calls int
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req embedRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "text-embedding-3-small" {
			t.Errorf("model = %q", req.Model)
		}
		// Reply in reverse order; vector[0] encodes the text length.
		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		var data []item
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Embedding: []float32{float32(len(req.Input[i])), 1}, Index: i})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer srv.Close()

	e, err := NewOpenAI(OpenAIConfig{Endpoint: srv.URL + "/", Model: "text-embedding-3-small", APIKey: "k", BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 batches", calls)
	}
	if gotAuth != "Bearer k" {
		t.Errorf("auth = %q", gotAuth)
	}
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][0] != want {
			t.Errorf("vecs[%d][0] = %f, want %f", i, vecs[i][0], want)
		}
	}
}

func TestOpenAIMissingEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	e, _ := NewOpenAI(OpenAIConfig{Endpoint: srv.URL, Model: "m"})
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestNewOpenAIValidates(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{Model: "m"}); err == nil {
		t.Error("expected endpoint error")
	}
	if _, err := NewOpenAI(OpenAIConfig{Endpoint: "http://x"}); err == nil {
		t.Error("expected model error")
	}
}

type slowEmbedder struct{ delay time.Duration }

func (s slowEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-time.After(s.delay):
		return []float32{1}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s slowEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	v, err := s.Embed(ctx, "")
	if err != nil {
		return nil, err
	}
	return [][]float32{v}, nil
}

func (s slowEmbedder) Close() error { return nil }

func TestWithTimeout(t *testing.T) {
	emb := WithTimeout(slowEmbedder{delay: time.Second}, 20*time.Millisecond)
	if _, err := emb.Embed(context.Background(), "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Embed() error = %v, want deadline exceeded", err)
	}
	if _, err := emb.EmbedBatch(context.Background(), []string{"x"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("EmbedBatch() error = %v, want deadline exceeded", err)
	}

	fast := WithTimeout(slowEmbedder{}, time.Second)
	if v, err := fast.Embed(context.Background(), "x"); err != nil || v[0] != 1 {
		t.Errorf("fast Embed() = %v, %v", v, err)
	}

	base := slowEmbedder{}
	if WithTimeout(base, 0) != Embedder(base) {
		t.Error("zero timeout should return the embedder unchanged")
	}
}
