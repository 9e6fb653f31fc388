package compactor

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Rune limits for text handed to each stage.
const (
	EmbeddingLimit = 8000
	PromptLimit    = 2000
	SummaryLimit   = 120
)

// Prepare normalizes text for classification: NFKC (folds full-width Latin
// and half-width katakana), control characters dropped, runs of whitespace
// collapsed to one space, then truncated to limit runes. A limit of zero or
// less disables truncation.
func Prepare(text string, limit int) string {
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), r == 0xFFFD:
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return truncate(b.String(), limit)
}

// Summary returns the first non-empty line of text, cut to SummaryLimit
// runes with a trailing "..." when shortened.
func Summary(text string) string {
	var line string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if cut := truncate(line, SummaryLimit); cut != line {
		return cut + "..."
	}
	return line
}

// truncate cuts s to at most n runes, never splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
