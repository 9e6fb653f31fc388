package tiermap

import "github.com/crimson-sun/tiermap/internal/model"

// Result is one classified text.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Result struct {
	Domain                string          `json:"domain"`
	DomainConfidence      float64         `json:"domain_confidence"`
	Categories            []CategoryMatch `json:"categories"`
	Profile               Profile         `json:"profile"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
	Method                string          `json:"method"` // vector_only, hybrid or degraded
	Rationale             string          `json:"rationale,omitempty"`
	DegradedReason        string          `json:"degraded_reason,omitempty"`
	DomainRanking         []DomainScore   `json:"domain_ranking,omitempty"`
	Notes                 []string        `json:"notes,omitempty"`
}

// CategoryMatch is a ranked fine-grained category.
type CategoryMatch struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	TierPath   []string `json:"tier_path"`
	Rationale  string   `json:"rationale,omitempty"`
}

// Profile is the estimated reader.
type Profile struct {
	AgeRange            string   `json:"age_range"`
	SophisticationScore int      `json:"sophistication_score"` // 1-10
	SophisticationTier  string   `json:"sophistication_tier"`  // basic, intermediate, advanced
	Interests           []string `json:"interests,omitempty"`
	Language            string   `json:"language,omitempty"`
}

// DomainScore is one entry of the coarse domain ranking.
type DomainScore struct {
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
}

// Item is one position of a batch. Exactly one of Result and Err is set.
type Item struct {
	Index  int
	Result *Result
	Err    error
}

// Degraded reports whether local heuristics produced the categories.
func (r Result) Degraded() bool { return r.Method == string(model.MethodDegraded) }

func resultFromRecord(rec model.Record) Result {
	res := Result{
		Domain:                rec.Domain,
		DomainConfidence:      rec.DomainConfidence,
		Categories:            make([]CategoryMatch, len(rec.Categories)),
		ProcessingTimeSeconds: rec.ProcessingTimeSeconds,
		Method:                string(rec.Method),
		Rationale:             rec.Rationale,
		DegradedReason:        rec.DegradedReason,
		Notes:                 rec.Notes,
		Profile: Profile{
			AgeRange:            rec.Profile.AgeRange,
			SophisticationScore: rec.Profile.SophisticationScore,
			SophisticationTier:  rec.Profile.SophisticationTier,
			Interests:           rec.Profile.Interests,
			Language:            rec.Profile.Language,
		},
	}
	for i, c := range rec.Categories {
		res.Categories[i] = CategoryMatch{
			ID:         c.ID,
			Name:       c.Name,
			Confidence: c.Confidence,
			TierPath:   c.TierPath,
			Rationale:  c.Rationale,
		}
	}
	if len(rec.DomainRanking) > 0 {
		res.DomainRanking = make([]DomainScore, len(rec.DomainRanking))
		for i, d := range rec.DomainRanking {
			res.DomainRanking[i] = DomainScore{Domain: d.Domain, Score: d.Score}
		}
	}
	return res
}
