package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_PostsJSON(t *testing.T) {
	var gotMethod, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"name":"tiermap","version":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	var dest struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
	}
	err := c.PostJSON(context.Background(), "/info", map[string]string{"q": "x"}, &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Name != "tiermap" || dest.Version != 1 {
		t.Fatalf("unexpected result: %+v", dest)
	}
	if gotMethod != http.MethodPost || gotType != "application/json" || gotBody["q"] != "x" {
		t.Fatalf("request = %s %q %v", gotMethod, gotType, gotBody)
	}
}

func TestDo_BearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token-123")
	if err := c.Do(context.Background(), http.MethodGet, "/", nil, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-token-123" {
		t.Fatalf("expected 'Bearer secret-token-123', got %q", gotAuth)
	}

	c = New(srv.URL, "")
	c.Do(context.Background(), http.MethodGet, "/", nil, nil)
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestGetRaw_UserAgentAndHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	c := New("", "", WithUserAgent("Mozilla/5.0 test"), WithHeader("Accept-Language", "ja,en"))
	body, ctype, err := c.GetRaw(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html></html>" || ctype != "text/html; charset=utf-8" {
		t.Fatalf("GetRaw() = %q, %q", body, ctype)
	}
	if gotUA != "Mozilla/5.0 test" || gotLang != "ja,en" {
		t.Fatalf("headers = %q, %q", gotUA, gotLang)
	}
}

func TestDo_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.Do(context.Background(), http.MethodGet, "/bad", nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 400 || apiErr.Temporary() {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if apiErr.Body != `{"error":"bad request"}` {
		t.Fatalf("unexpected body: %q", apiErr.Body)
	}
}

func TestDo_RateLimit_RetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(429)
			w.Write([]byte(`rate limited`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	var dest struct {
		OK bool `json:"ok"`
	}
	start := time.Now()
	err := c.Do(context.Background(), http.MethodGet, "/", nil, &dest)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dest.OK {
		t.Fatal("expected ok=true")
	}
	if elapsed < 900*time.Millisecond {
		t.Fatalf("expected ~1s retry delay, got %v", elapsed)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestDo_RetryOn5xxResendsBody(t *testing.T) {
	var calls atomic.Int32
	var lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		lastBody = in["k"]
		if calls.Add(1) == 1 {
			w.WriteHeader(503)
			w.Write([]byte(`service unavailable`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	var dest struct {
		OK bool `json:"ok"`
	}
	if err := c.PostJSON(context.Background(), "/", map[string]string{"k": "v"}, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dest.OK || calls.Load() != 2 {
		t.Fatalf("ok=%v calls=%d", dest.OK, calls.Load())
	}
	if lastBody != "v" {
		t.Fatalf("retry sent body %q", lastBody)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, "tok")
	err := c.Do(ctx, http.MethodGet, "/", nil, &struct{}{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(429)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.Do(context.Background(), http.MethodGet, "/", nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 429 {
		t.Fatalf("expected status 429, got %d", apiErr.StatusCode)
	}
	// 1 initial + 3 retries = 4 total calls
	if calls.Load() != 4 {
		t.Fatalf("expected 4 calls, got %d", calls.Load())
	}
}
