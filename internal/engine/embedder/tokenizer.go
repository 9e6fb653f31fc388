package embedder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultMaxSeqLen = 256
	maxWordRunes     = 100
)

// tokenized holds a padded batch ready for inference. All slices are flat:
// [batchSize * seqLen].
type tokenized struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	batchSize     int64
	seqLen        int64
}

// tokenizer performs BERT-style WordPiece tokenization. Han, kana and hangul
// characters become single-character words before WordPiece, which is how
// multilingual vocabularies expect Japanese and Korean input.
type tokenizer struct {
	vocab     *vocab
	maxSeqLen int
	lowercase bool
}

func newTokenizer(vocabPath string, maxSeqLen int, lowercase bool) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	return &tokenizer{vocab: v, maxSeqLen: maxSeqLen, lowercase: lowercase}, nil
}

// encode returns [CLS] ids... [SEP], truncated to maxSeqLen.
func (t *tokenizer) encode(text string) []int64 {
	pieces := t.wordpiece(t.basicTokenize(text))
	if limit := t.maxSeqLen - 2; len(pieces) > limit {
		pieces = pieces[:limit]
	}
	ids := make([]int64, 0, len(pieces)+2)
	ids = append(ids, t.vocab.clsID)
	for _, p := range pieces {
		ids = append(ids, t.vocab.lookup(p))
	}
	return append(ids, t.vocab.sepID)
}

// tokenizeBatch encodes texts and pads them to the longest sequence.
func (t *tokenizer) tokenizeBatch(texts []string) tokenized {
	if len(texts) == 0 {
		return tokenized{}
	}

	seqs := make([][]int64, len(texts))
	longest := 0
	for i, text := range texts {
		seqs[i] = t.encode(text)
		longest = max(longest, len(seqs[i]))
	}

	n, seqLen := int64(len(texts)), int64(longest)
	out := tokenized{
		inputIDs:      make([]int64, n*seqLen),
		attentionMask: make([]int64, n*seqLen),
		tokenTypeIDs:  make([]int64, n*seqLen),
		batchSize:     n,
		seqLen:        seqLen,
	}
	for i, ids := range seqs {
		row := int64(i) * seqLen
		for j, id := range ids {
			out.inputIDs[row+int64(j)] = id
			out.attentionMask[row+int64(j)] = 1
		}
		for j := len(ids); j < longest; j++ {
			out.inputIDs[row+int64(j)] = t.vocab.padID
		}
	}
	return out
}

// basicTokenize cleans the text, isolates CJK characters, optionally folds
// case and accents, then splits on whitespace and punctuation.
func (t *tokenizer) basicTokenize(text string) []string {
	text = isolateCJK(cleanText(text))
	if t.lowercase {
		text = stripAccents(strings.ToLower(text))
	}

	var words []string
	for _, field := range strings.Fields(text) {
		words = append(words, splitOnPunctuation(field)...)
	}
	return words
}

func (t *tokenizer) wordpiece(words []string) []string {
	var out []string
	for _, w := range words {
		out = append(out, t.wordpieceWord(w)...)
	}
	return out
}

// wordpieceWord is greedy longest-match-first over the vocabulary.
func (t *tokenizer) wordpieceWord(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []string{"[UNK]"}
	}

	var pieces []string
	for start := 0; start < len(runes); {
		end := len(runes)
		var match string
		for ; end > start; end-- {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if t.vocab.contains(sub) {
				match = sub
				break
			}
		}
		if match == "" {
			return []string{"[UNK]"}
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces
}

// cleanText drops NUL, U+FFFD and control characters and maps whitespace to
// a plain space.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0 || r == 0xFFFD || isControl(r):
		case isWhitespace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripAccents removes combining marks from Latin-range text only. Kana are
// left composed so dakuten survive (が stays が, not か).
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 0x2E80 {
			b.WriteRune(r)
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if !unicode.Is(unicode.Mn, d) {
				b.WriteRune(d)
			}
		}
	}
	return b.String()
}

func isolateCJK(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/2)
	for _, r := range text {
		if isCJK(r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitOnPunctuation keeps each punctuation rune as its own token.
func splitOnPunctuation(word string) []string {
	var out []string
	start := -1
	for i, r := range word {
		if isPunctuation(r) {
			if start >= 0 {
				out = append(out, word[start:i])
				start = -1
			}
			out = append(out, string(r))
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, word[start:])
	}
	return out
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
}

func isPunctuation(r rune) bool {
	// ASCII symbols count as punctuation, as in the reference BERT tokenizer.
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r) ||
		r == 0x30FC // prolonged sound mark ー
}
