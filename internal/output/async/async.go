package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/tiermap/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 30 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately, dropping the result, when
// the buffer is full instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples classification from slow sinks via a buffered channel. A
// background goroutine drains it to the wrapped output; inner errors go to
// errFunc instead of the caller.
type Async struct {
	inner      output.Output
	ch         chan output.Envelope
	done       chan struct{}
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan output.Envelope, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues env. It blocks while the buffer is full unless WithDropOnFull
// is set, and gives up when ctx is done.
func (a *Async) Write(ctx context.Context, env output.Envelope) error {
	if a.dropOnFull {
		select {
		case a.ch <- env:
		default:
			slog.Warn("async output buffer full, dropping result",
				"index", env.Index, "ref", env.Ref)
		}
		return nil
	}
	select {
	case a.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for env := range a.ch {
		if err := a.inner.Write(context.Background(), env); err != nil {
			a.errFunc(err)
		}
	}
}
