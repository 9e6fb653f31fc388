package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, true, slog.LevelInfo))

	logger.Info("classified", "domain", "Automotive", "method", "hybrid")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput: %s", err, buf.String())
	}
	if m["msg"] != "classified" {
		t.Errorf("expected msg 'classified', got %q", m["msg"])
	}
	if m["domain"] != "Automotive" {
		t.Errorf("expected domain attribute, got %q", m["domain"])
	}
}

func TestNewHandlerText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, false, slog.LevelInfo))

	logger.Info("degraded", "reason", "reasoning_unavailable")

	out := buf.String()
	if !strings.Contains(out, "msg=degraded") {
		t.Errorf("expected text output containing msg, got: %s", out)
	}
	if !strings.Contains(out, "reason=reasoning_unavailable") {
		t.Errorf("expected text output containing reason, got: %s", out)
	}
}

func TestNewHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, false, slog.LevelWarn))

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected below-level records dropped, got: %s", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn record, got: %s", buf.String())
	}
}
