package output

import (
	"context"

	"github.com/crimson-sun/tiermap/internal/model"
)

// Envelope is one classified (or failed) input on its way to a sink.
type Envelope struct {
	Index   int
	Ref     string
	Preview string        // short excerpt of the input text
	Record  *model.Record // nil when Err is set
	Err     error
}

// Output defines the interface for classification result destinations.
type Output interface {
	Write(ctx context.Context, env Envelope) error
	Close() error
}
