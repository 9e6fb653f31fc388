package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/crimson-sun/tiermap/internal/model"
	"github.com/crimson-sun/tiermap/internal/output"
)

func testEnvelope(i int) output.Envelope {
	return output.Envelope{
		Index: i,
		Ref:   "doc.txt",
		Record: &model.Record{
			Domain:           "Travel",
			DomainConfidence: 0.7,
			Categories:       []model.CategoryRecord{{ID: "655", Name: "Travel Locations", Confidence: 0.5, Rationale: "beach"}},
			Profile:          model.ProfileRecord{AgeRange: "25-34", SophisticationScore: 3, SophisticationTier: "basic"},
			Method:           model.MethodDegraded,
			DegradedReason:   "reasoning_unavailable",
			Rationale:        "heuristic fallback: reasoning_unavailable",
		},
	}
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Full)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testEnvelope(i)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Write(context.Background(), output.Envelope{Index: 5, Err: errors.New("timeout")})
	out.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}
	for i, line := range lines[:5] {
		var e output.Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
			continue
		}
		if e.Index != i || e.Record == nil || e.Domain != "Travel" {
			t.Errorf("line %d: entry = %+v", i, e)
		}
	}
	if !strings.Contains(lines[5], `"error":"timeout"`) {
		t.Errorf("error line = %s", lines[5])
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")

	out, err := New(path, output.Full, WithMaxSize(200), WithMaxFiles(2))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 6; i++ {
		if err := out.Write(context.Background(), testEnvelope(i)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty: %v", filepath.Base(p), err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("kept more rotated files than WithMaxFiles allows")
	}
}

func TestCloseFlushesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Full)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Write(context.Background(), testEnvelope(0))
	out.Close()

	data, _ := os.ReadFile(path)
	if len(data) == 0 {
		t.Error("file is empty after Close")
	}
}

func TestMinimalStripsRationale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Minimal)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Write(context.Background(), testEnvelope(0))
	out.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "rationale") {
		t.Errorf("Minimal output carries rationale: %s", data)
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Full)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testEnvelope(i))
		}()
	}
	wg.Wait()
	out.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 50 {
		t.Errorf("got %d lines, want 50", len(lines))
	}
}
