package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/tiermap/internal/output"
)

// Multi fans out results to several outputs, sequentially and in order. One
// failing output does not stop the others from receiving the result.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs. Nil outputs are
// skipped.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports how many outputs are attached.
func (m *Multi) Len() int { return len(m.outputs) }

// Write delivers env to every wrapped output and joins their errors.
func (m *Multi) Write(ctx context.Context, env output.Envelope) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
