package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimson-sun/tiermap/internal/httpclient"
)

func init() {
	Register("http", newWebSource)
	Register("https", newWebSource)
}

// webSource downloads pages and extracts their readable text.
type webSource struct {
	client *httpclient.Client
}

func newWebSource(cfg Config) Source {
	return &webSource{client: httpclient.New("", "",
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithMaxBody(cfg.MaxBytes),
		httpclient.WithHeader("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8"),
		httpclient.WithHeader("Accept-Language", "ja,en;q=0.8"),
	)}
}

func (s *webSource) Fetch(ctx context.Context, rawURL string) (Document, error) {
	body, contentType, err := s.client.GetRaw(ctx, rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("source: fetch %s: %w", rawURL, err)
	}
	if strings.HasPrefix(contentType, "text/plain") {
		return Document{Ref: rawURL, Text: string(body)}, nil
	}
	page, err := ExtractHTML(body)
	if err != nil {
		return Document{}, fmt.Errorf("source: %s: %w", rawURL, err)
	}
	return Document{Ref: rawURL, Title: page.Title, Text: page.Text()}, nil
}
