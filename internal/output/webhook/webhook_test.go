package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/tiermap/internal/httpclient"
	"github.com/crimson-sun/tiermap/internal/model"
	"github.com/crimson-sun/tiermap/internal/output"
)

func testEnvelope(ref string) output.Envelope {
	return output.Envelope{
		Ref: ref,
		Record: &model.Record{
			Domain:  "Sports",
			Method:  model.MethodVectorOnly,
			Profile: model.ProfileRecord{AgeRange: "18-24", SophisticationScore: 2, SophisticationTier: "basic"},
		},
	}
}

type collector struct {
	mu       sync.Mutex
	received [][]output.Entry
}

func (c *collector) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var batch []output.Entry
	json.Unmarshal(body, &batch)
	c.mu.Lock()
	c.received = append(c.received, batch)
	c.mu.Unlock()
	w.WriteHeader(200)
}

func (c *collector) batches() [][]output.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]output.Entry(nil), c.received...)
}

func TestBatchFlushAtBatchSize(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(3), WithFlushInterval(10*time.Second))
	for i := 0; i < 3; i++ {
		if err := out.Write(context.Background(), testEnvelope("a")); err != nil {
			t.Fatal(err)
		}
	}

	got := c.batches()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(got))
	}
	if len(got[0]) != 3 || got[0][0].Domain != "Sports" {
		t.Errorf("batch = %+v", got[0])
	}
}

func TestTimerFlushBeforeBatchSize(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(100*time.Millisecond))
	out.Write(context.Background(), testEnvelope("timer"))

	time.Sleep(300 * time.Millisecond)

	got := c.batches()
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("expected 1 timer-triggered batch of 1, got %v", got)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1))
	if err := out.Write(context.Background(), testEnvelope("retry")); err != nil {
		t.Fatalf("Write error after retry: %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(400)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1))
	err := out.Write(context.Background(), testEnvelope("client-error"))

	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Errorf("err = %v, want 400 APIError", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt for 4xx, got %d", attempts.Load())
	}
}

func TestCustomHeadersAndToken(t *testing.T) {
	var gotCustom, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCustom = r.Header.Get("X-Custom-Auth")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL,
		WithBatchSize(1),
		WithHeaders(map[string]string{"X-Custom-Auth": "secret123"}),
		WithToken("tok"),
	)
	out.Write(context.Background(), testEnvelope("headers"))

	if gotCustom != "secret123" || gotAuth != "Bearer tok" {
		t.Errorf("headers = %q, %q", gotCustom, gotAuth)
	}
}

func TestTimerFlushErrorCallbackInvoked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
	}))
	defer srv.Close()

	var errCount atomic.Int64
	out := New(srv.URL,
		WithBatchSize(100),
		WithFlushInterval(50*time.Millisecond),
		WithOnError(func(err error) { errCount.Add(1) }),
	)
	out.Write(context.Background(), testEnvelope("timer-error"))

	time.Sleep(300 * time.Millisecond)

	if errCount.Load() != 1 {
		t.Errorf("expected error callback called 1 time, got %d", errCount.Load())
	}
	out.Close()
}

func TestCloseFlushesRemaining(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(10*time.Second))
	out.Write(context.Background(), testEnvelope("close-flush"))
	out.Write(context.Background(), output.Envelope{Index: 1, Err: errors.New("fetch failed")})
	out.Close()

	got := c.batches()
	if len(got) != 1 || len(got[0]) != 2 {
		t.Fatalf("expected 1 batch of 2 on Close, got %v", got)
	}
	if got[0][1].Error != "fetch failed" {
		t.Errorf("error entry = %+v", got[0][1])
	}
}
