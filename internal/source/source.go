// Package source turns a reference (file path, URL or literal text) into the
// UTF-8 text handed to the classifier.
package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Document is fetched text plus what is known about where it came from.
type Document struct {
	Ref   string
	Title string
	Text  string
}

// Source fetches one kind of reference.
type Source interface {
	Fetch(ctx context.Context, ref string) (Document, error)
}

// Config holds settings shared by all sources.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// DefaultUserAgent looks like a desktop browser; some sites refuse bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
	return c
}

// Constructor creates a Source.
type Constructor func(cfg Config) Source

var registry = map[string]Constructor{}

// Register adds a source constructor under the given scheme.
func Register(scheme string, ctor Constructor) {
	registry[scheme] = ctor
}

// Get returns the constructor for scheme.
func Get(scheme string) (Constructor, error) {
	ctor, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("source: unknown scheme %q", scheme)
	}
	return ctor, nil
}

// Schemes returns the registered scheme names, sorted.
func Schemes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks a scheme from the shape of ref: http(s) URLs, "text:"
// literals, "file:" paths, and bare paths.
func Resolve(ref string) (scheme, target string) {
	switch {
	case strings.HasPrefix(ref, "text:"):
		return "text", strings.TrimPrefix(ref, "text:")
	case strings.HasPrefix(ref, "file://"):
		if u, err := url.Parse(ref); err == nil {
			return "file", u.Path
		}
		return "file", strings.TrimPrefix(ref, "file://")
	case strings.HasPrefix(ref, "file:"):
		return "file", strings.TrimPrefix(ref, "file:")
	}
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return u.Scheme, ref
	}
	return "file", ref
}

// Fetcher dispatches references to the registered sources.
type Fetcher struct {
	cfg     Config
	sources map[string]Source
}

// NewFetcher instantiates every registered source with cfg.
func NewFetcher(cfg Config) *Fetcher {
	cfg = cfg.withDefaults()
	f := &Fetcher{cfg: cfg, sources: make(map[string]Source, len(registry))}
	for scheme, ctor := range registry {
		f.sources[scheme] = ctor(cfg)
	}
	return f
}

// Fetch resolves ref and fetches it. Empty documents are an error.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (Document, error) {
	scheme, target := Resolve(ref)
	src, ok := f.sources[scheme]
	if !ok {
		return Document{}, fmt.Errorf("source: unknown scheme %q (have %s)", scheme, strings.Join(Schemes(), ", "))
	}
	doc, err := src.Fetch(ctx, target)
	if err != nil {
		return Document{}, err
	}
	doc.Ref = ref
	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, fmt.Errorf("source: %s: no text content", ref)
	}
	return doc, nil
}
