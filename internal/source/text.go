package source

import "context"

func init() {
	Register("text", func(Config) Source { return textSource{} })
}

// textSource returns the reference itself.
type textSource struct{}

func (textSource) Fetch(_ context.Context, ref string) (Document, error) {
	return Document{Ref: ref, Text: ref}, nil
}
