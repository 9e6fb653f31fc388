package heuristic

import (
	"math"
	"sort"
	"strings"

	"github.com/crimson-sun/tiermap/internal/model"
)

// DegradedCeiling caps fallback confidences so they never read like
// reasoning-backed scores.
const DegradedCeiling = 0.6

const (
	tfWeight       = 0.6
	coverageWeight = 0.4
)

// Term frequency saturates at ten hits.
var tfNorm = math.Log1p(10)

// RankCandidates scores each candidate by keyword evidence in text and
// returns the best min(limit, len(candidates)), sorted by confidence with ties
// broken by id. Candidates without evidence are still returned, at zero.
func (a *Analyzer) RankCandidates(text string, candidates []model.Category, limit int) []model.Candidate {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}
	d := a.candidateDictionary(candidates)

	type acc struct {
		hits    int
		matched []string
	}
	accs := make([]acc, len(candidates))
	for _, h := range d.match(text) {
		for _, e := range h.entries {
			accs[e.index].hits += h.count
			accs[e.index].matched = append(accs[e.index].matched, e.term)
		}
	}

	out := make([]model.Candidate, len(candidates))
	for i, c := range candidates {
		terms := d.termCount[i]
		var score float64
		if terms > 0 && accs[i].hits > 0 {
			coverage := float64(len(accs[i].matched)) / float64(terms)
			logTF := math.Min(1, math.Log1p(float64(accs[i].hits))/tfNorm)
			score = logTF*tfWeight + math.Min(1, coverage)*coverageWeight
		}
		rationale := "no keyword evidence"
		if len(accs[i].matched) > 0 {
			rationale = "keyword match: " + strings.Join(accs[i].matched, ", ")
		}
		out[i] = model.Candidate{
			Category:   c,
			Confidence: DegradedCeiling * score,
			Rationale:  rationale,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Category.ID < out[j].Category.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

type candidateDict struct {
	*dictionary
	termCount []int
}

// candidateDictionary builds, or reuses, the matcher for a candidate set.
// Subsets repeat per domain, so the cache stays small.
func (a *Analyzer) candidateDictionary(candidates []model.Category) *candidateDict {
	var kb strings.Builder
	for _, c := range candidates {
		kb.WriteString(c.ID)
		kb.WriteByte(':')
		kb.WriteString(c.Name)
		kb.WriteByte('\n')
	}
	key := kb.String()
	if v, ok := a.rankings.Load(key); ok {
		return v.(*candidateDict)
	}

	d := &candidateDict{dictionary: newDictionary(), termCount: make([]int, len(candidates))}
	for i, c := range candidates {
		terms := candidateTerms(c.Name)
		d.termCount[i] = len(terms)
		for _, t := range terms {
			d.add(t, entry{index: i, term: t})
		}
	}
	d.compile()
	v, _ := a.rankings.LoadOrStore(key, d)
	return v.(*candidateDict)
}

// candidateTerms returns the full name, its significant words and any
// aliases, deduplicated after normalization.
func candidateTerms(name string) []string {
	seen := make(map[string]bool)
	var out []string
	push := func(t string) {
		n := strings.TrimSpace(normalize(t))
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		out = append(out, t)
	}
	push(name)
	for _, w := range strings.Fields(normalize(name)) {
		if (len([]rune(w)) < 3 && w != "ai") || stopWords[w] {
			continue
		}
		push(w)
	}
	for _, alias := range categoryAliases[name] {
		push(alias)
	}
	return out
}
