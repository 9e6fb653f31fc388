// Package heuristic is the deterministic local fallback used when external
// reasoning is unavailable: reader-profile estimation from writing style and
// keyword-based candidate ranking, both built on Aho-Corasick matching.
package heuristic

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/tiermap/internal/model"
)

type entryKind uint8

const (
	kindTechnical entryKind = iota
	kindAge
	kindInterest
)

type entry struct {
	kind  entryKind
	label string // age bucket or domain
	index int    // candidate position, for ranking dictionaries
	term  string
}

// Analyzer holds a precompiled matcher over the built-in lexicon. Safe for
// concurrent use.
type Analyzer struct {
	dict     *dictionary
	rankings sync.Map // candidate set key -> *dictionary
}

// New compiles the built-in lexicon.
func New() *Analyzer {
	d := newDictionary()
	for _, t := range technicalTerms {
		d.add(t, entry{kind: kindTechnical, term: t})
	}
	for bucket, terms := range ageSignals {
		for _, t := range terms {
			d.add(t, entry{kind: kindAge, label: bucket, term: t})
		}
	}
	for domain, terms := range domainKeywords {
		for _, t := range terms {
			d.add(t, entry{kind: kindInterest, label: domain, term: t})
		}
	}
	d.compile()
	return &Analyzer{dict: d}
}

// Style summarizes how a text is written.
type Style struct {
	Language          string // japanese, english or mixed
	Words             int
	Sentences         int
	AvgSentenceLength float64 // words per sentence
	LongWordRatio     float64
	TechnicalHits     int
	TechnicalTerms    []string
	TechnicalDensity  float64 // hits per 100 words
	AgeSignals        map[string]int
	Interests         map[string][]string // domain -> matched keywords
}

// AnalyzeStyle measures language, sentence structure and vocabulary.
func (a *Analyzer) AnalyzeStyle(text string) Style {
	s := Style{
		Language:   detectLanguage(text),
		AgeSignals: make(map[string]int),
		Interests:  make(map[string][]string),
	}

	tokens := wordTokens(text)
	s.Words = len(tokens)
	long := 0
	for _, tok := range tokens {
		if isLongWord(tok) {
			long++
		}
	}
	if s.Words > 0 {
		s.LongWordRatio = float64(long) / float64(s.Words)
	}
	s.Sentences = countSentences(text)
	if s.Sentences > 0 {
		s.AvgSentenceLength = float64(s.Words) / float64(s.Sentences)
	}

	for _, m := range a.dict.match(text) {
		for _, e := range m.entries {
			switch e.kind {
			case kindTechnical:
				s.TechnicalHits += m.count
				s.TechnicalTerms = append(s.TechnicalTerms, e.term)
			case kindAge:
				s.AgeSignals[e.label] += m.count
			case kindInterest:
				s.Interests[e.label] = append(s.Interests[e.label], e.term)
			}
		}
	}
	sort.Strings(s.TechnicalTerms)
	for d := range s.Interests {
		sort.Strings(s.Interests[d])
	}
	if s.Words > 0 {
		s.TechnicalDensity = float64(s.TechnicalHits) * 100 / float64(s.Words)
	}
	return s
}

// EstimateProfile derives a reader profile from style and the detected
// domain. The score combines technical vocabulary, sentence complexity and a
// per-domain baseline, clamped to 1-10.
func (a *Analyzer) EstimateProfile(s Style, domain string) model.ReaderProfile {
	tech := math.Min(4, float64(len(s.TechnicalTerms))*0.75+s.TechnicalDensity*0.25)

	var complexity float64
	switch {
	case s.AvgSentenceLength > 35:
		complexity = 2
	case s.AvgSentenceLength > 22:
		complexity = 1
	}
	if s.LongWordRatio > 0.25 {
		complexity++
	}

	score := int(math.Round(2 + tech + complexity + domainBaseline[domain]))
	p := model.ReaderProfile{
		AgeRange:            ageRange(s.AgeSignals),
		SophisticationScore: score,
		Interests:           s.Interests[domain],
		Language:            s.Language,
	}
	return p.ClampScore()
}

func ageRange(signals map[string]int) string {
	best, bestN := defaultAgeRange, 0
	for _, bucket := range ageOrder {
		if n := signals[bucket]; n > bestN {
			best, bestN = bucket, n
		}
	}
	return best
}

func detectLanguage(text string) string {
	var ja, latin int
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana):
			ja++
		case r < unicode.MaxLatin1 && unicode.IsLetter(r):
			latin++
		}
	}
	// A Japanese character carries roughly as much as a short English word,
	// so Latin letters are weighted down.
	jaW, enW := float64(ja), float64(latin)/4
	total := jaW + enW
	switch {
	case total == 0:
		return "english"
	case jaW/total >= 0.8:
		return "japanese"
	case enW/total >= 0.8:
		return "english"
	}
	return "mixed"
}

// wordTokens splits text into Latin words and runs of Han or katakana.
// Hiragana acts as a separator since it is mostly particles and inflection.
func wordTokens(text string) []string {
	var out []string
	var cur []rune
	var curClass int
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		c := runeClass(r)
		if c == 0 || c != curClass {
			flush()
		}
		curClass = c
		if c != 0 {
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

const (
	classLatin = iota + 1
	classHan
	classKatakana
)

func runeClass(r rune) int {
	switch {
	case unicode.Is(unicode.Han, r):
		return classHan
	case unicode.Is(unicode.Katakana, r) || r == 'ー':
		return classKatakana
	case unicode.Is(unicode.Hiragana, r):
		return 0
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return classLatin
	}
	return 0
}

func isLongWord(tok string) bool {
	n := len([]rune(tok))
	if runeClass([]rune(tok)[0]) == classLatin {
		return n >= 9
	}
	return n >= 4
}

func countSentences(text string) int {
	n := 0
	inSentence := false
	for _, r := range text {
		switch r {
		case '.', '!', '?', '。', '！', '？', '\n':
			if inSentence {
				n++
			}
			inSentence = false
		default:
			if !unicode.IsSpace(r) {
				inSentence = true
			}
		}
	}
	if inSentence {
		n++
	}
	return n
}

// dictionary maps normalized patterns to what they signal.
type dictionary struct {
	patterns []string
	entries  [][]entry
	index    map[string]int
	matcher  *ahocorasick.Matcher
}

func newDictionary() *dictionary {
	return &dictionary{index: make(map[string]int)}
}

// add registers term. Latin-script terms are padded with spaces so they only
// match whole words; CJK terms are not, since Japanese has no word spacing.
func (d *dictionary) add(term string, e entry) {
	p := strings.TrimSpace(normalize(term))
	if p == "" {
		return
	}
	if !hasCJK(p) {
		p = " " + p + " "
	}
	i, ok := d.index[p]
	if !ok {
		i = len(d.patterns)
		d.index[p] = i
		d.patterns = append(d.patterns, p)
		d.entries = append(d.entries, nil)
	}
	d.entries[i] = append(d.entries[i], e)
}

func (d *dictionary) compile() {
	if len(d.patterns) > 0 {
		d.matcher = ahocorasick.NewStringMatcher(d.patterns)
	}
}

type hit struct {
	pattern int
	count   int
	entries []entry
}

// match returns each matched pattern once, in dictionary order, with its
// occurrence count.
func (d *dictionary) match(text string) []hit {
	if d.matcher == nil {
		return nil
	}
	padded := " " + normalize(text) + " "
	idx := d.matcher.MatchThreadSafe([]byte(padded))
	sort.Ints(idx)
	out := make([]hit, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(d.patterns) {
			continue
		}
		// Non-overlapping count; adjacent repeats of a padded pattern
		// (" ai ai ") count once.
		n := max(1, strings.Count(padded, d.patterns[i]))
		out = append(out, hit{pattern: i, count: n, entries: d.entries[i]})
	}
	return out
}

// normalize applies NFKC and lowercase, maps everything but letters and
// digits to single spaces, and separates CJK from Latin runs.
func normalize(text string) string {
	text = strings.ToLower(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(text))
	space := true
	prevCJK := false
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		cjk := isCJKRune(r)
		if !space && cjk != prevCJK {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		space, prevCJK = false, cjk
	}
	return strings.TrimRight(b.String(), " ")
}

func isCJKRune(r rune) bool {
	return r == 'ー' || unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

func hasCJK(s string) bool {
	for _, r := range s {
		if isCJKRune(r) {
			return true
		}
	}
	return false
}
