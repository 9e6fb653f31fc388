package compactor

import (
	"math"
	"strings"
	"unicode"
)

// EstimateTokens approximates a subword token count: whitespace-separated
// words count 1.3 each (rounded up) and every Han, kana or hangul rune
// counts one, since CJK text has no spaces to split on.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	var cjk int
	latin := strings.FieldsFunc(s, func(r rune) bool {
		if isCJK(r) {
			cjk++
			return true
		}
		return unicode.IsSpace(r)
	})
	return cjk + int(math.Ceil(float64(len(latin))*1.3))
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
