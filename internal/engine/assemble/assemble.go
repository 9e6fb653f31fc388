// Package assemble turns the outputs of the pipeline stages into one Result.
package assemble

import (
	"math"
	"sort"
	"time"

	"github.com/crimson-sun/tiermap/internal/engine/fine"
	"github.com/crimson-sun/tiermap/internal/model"
)

// Input collects everything the assembler needs. Fine is nil when only coarse
// detection ran.
type Input struct {
	Ranking    []model.DomainScore
	Domain     string
	Score      float64
	Subset     []model.Category
	Fine       *fine.Outcome
	Profile    model.ReaderProfile // used when Fine is nil
	MaxResults int
	Elapsed    time.Duration
	Notes      []string
}

// Assemble builds the Result variant matching in. Candidates outside the
// subset are dropped, duplicates keep their highest confidence, and the list
// is sorted by confidence (ties by id) and capped at MaxResults. It never pads.
func Assemble(in Input) model.Result {
	o := model.Outcome{
		Domain:           in.Domain,
		DomainConfidence: clamp01(in.Score),
		DomainRanking:    in.Ranking,
		Profile:          in.Profile.ClampScore(),
		Elapsed:          in.Elapsed,
		Notes:            in.Notes,
	}
	if in.Fine == nil {
		return model.VectorOnlyResult{Outcome: o}
	}

	o.Categories = Rank(in.Fine.Candidates, in.Subset, in.MaxResults)
	o.Profile = in.Fine.Profile.ClampScore()
	o.Rationale = in.Fine.Rationale
	if in.Fine.Degraded {
		return model.DegradedResult{Outcome: o, Reason: in.Fine.Reason}
	}
	return model.HybridResult{Outcome: o}
}

// Rank filters candidates to the subset and orders them.
func Rank(candidates []model.Candidate, subset []model.Category, limit int) []model.Candidate {
	allowed := make(map[string]bool, len(subset))
	for _, c := range subset {
		allowed[c.ID] = true
	}

	best := make(map[string]int, len(candidates))
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !allowed[c.Category.ID] {
			continue
		}
		c.Confidence = clamp01(c.Confidence)
		if i, ok := best[c.Category.ID]; ok {
			if c.Confidence > out[i].Confidence {
				out[i] = c
			}
			continue
		}
		best[c.Category.ID] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Category.ID < out[j].Category.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
