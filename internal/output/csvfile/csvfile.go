// Package csvfile writes one CSV row per classified input.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/tiermap/internal/output"
)

// Output writes rows in the column order of output.CSVHeader.
type Output struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
}

// New creates (or truncates) path and writes the header row.
func New(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv output: %w", err)
	}
	o, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	o.closer = f
	return o, nil
}

// NewWriter writes CSV to w. Close flushes but does not close w.
func NewWriter(w io.Writer) (*Output, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(output.CSVHeader); err != nil {
		return nil, fmt.Errorf("csv output: header: %w", err)
	}
	return &Output{w: cw}, nil
}

func (o *Output) Write(_ context.Context, env output.Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Write(output.CSVRow(env)); err != nil {
		return fmt.Errorf("csv output: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file, if New opened one.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w.Flush()
	err := o.w.Error()
	if o.closer != nil {
		if cerr := o.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("csv output: %w", err)
	}
	return nil
}
