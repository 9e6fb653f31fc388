package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

func init() {
	Register("file", func(cfg Config) Source { return &fileSource{maxBytes: cfg.MaxBytes} })
}

// fileSource reads local files. HTML files go through the page extractor.
type fileSource struct {
	maxBytes int64
}

func (s *fileSource) Fetch(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("source: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("source: read %s: %w", path, err)
	}
	if int64(len(data)) > s.maxBytes {
		return Document{}, fmt.Errorf("source: %s exceeds %d bytes", path, s.maxBytes)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		page, err := ExtractHTML(data)
		if err != nil {
			return Document{}, fmt.Errorf("source: %s: %w", path, err)
		}
		return Document{Ref: path, Title: page.Title, Text: page.Text()}, nil
	}

	if !utf8.Valid(data) {
		return Document{}, fmt.Errorf("source: %s is not valid UTF-8", path)
	}
	return Document{Ref: path, Text: strings.TrimPrefix(string(data), "\ufeff")}, nil
}
