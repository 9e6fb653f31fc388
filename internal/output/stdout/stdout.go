package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/tiermap/internal/output"
)

// Format selects the stdout rendering.
type Format string

const (
	JSON   Format = "json"   // one JSON object per line
	Pretty Format = "pretty" // indented JSON
	Text   Format = "text"   // human-readable report
)

// Output writes results to stdout.
type Output struct {
	mu     sync.Mutex
	w      io.Writer
	enc    *json.Encoder
	format Format
	detail output.Detail
}

// New creates a stdout Output.
func New(format Format, detail output.Detail) *Output {
	return NewWriter(os.Stdout, format, detail)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, format Format, detail output.Detail) *Output {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if format == Pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{w: w, enc: enc, format: format, detail: detail}
}

func (o *Output) Write(_ context.Context, env output.Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.format == Text {
		if _, err := io.WriteString(o.w, output.TextReport(env)+"\n"); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}
	if err := o.enc.Encode(output.FormatEnvelope(env, o.detail)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
