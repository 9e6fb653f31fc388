package vectorindex

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader produces an index, typically from disk or by embedding descriptions.
type Loader func(ctx context.Context) (*Index, error)

// Handle lazily loads an index on first use. Concurrent first callers share
// one load; a successful result is kept for the life of the handle and a
// failed load is retried by the next caller.
type Handle struct {
	load  Loader
	group singleflight.Group

	mu  sync.RWMutex
	idx *Index
}

// NewHandle wraps loader.
func NewHandle(loader Loader) *Handle {
	return &Handle{load: loader}
}

// Ready wraps an already-built index.
func Ready(idx *Index) *Handle {
	return &Handle{idx: idx}
}

// Get returns the loaded index, loading it if needed.
func (h *Handle) Get(ctx context.Context) (*Index, error) {
	h.mu.RLock()
	idx := h.idx
	h.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	ch := h.group.DoChan("index", func() (any, error) {
		h.mu.RLock()
		cached := h.idx
		h.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		// Shared by every waiter, so no single caller's cancellation applies.
		loaded, err := h.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		h.idx = loaded
		h.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

// Loaded reports whether the index is already in memory.
func (h *Handle) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx != nil
}
