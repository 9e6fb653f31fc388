package model

import (
	"fmt"
	"math"
	"time"
)

// Record is the plain-mapping form of a Result: only strings, numbers and
// nested lists/mappings, suitable for any sink.
type Record struct {
	Domain                string           `json:"domain"`
	DomainConfidence      float64          `json:"domain_confidence"`
	Categories            []CategoryRecord `json:"categories"`
	Profile               ProfileRecord    `json:"profile"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
	Method                Method           `json:"method"`
	Rationale             string           `json:"rationale,omitempty"`
	DegradedReason        string           `json:"degraded_reason,omitempty"`
	DomainRanking         []DomainScore    `json:"domain_ranking,omitempty"`
	Notes                 []string         `json:"notes,omitempty"`
}

// CategoryRecord is one ranked category in a Record.
type CategoryRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	TierPath   []string `json:"tier_path"`
	Rationale  string   `json:"rationale,omitempty"`
}

// ProfileRecord is the reader profile in a Record.
type ProfileRecord struct {
	AgeRange            string   `json:"age_range"`
	SophisticationScore int      `json:"sophistication_score"`
	SophisticationTier  string   `json:"sophistication_tier"`
	Interests           []string `json:"interests,omitempty"`
	Language            string   `json:"language,omitempty"`
}

// ToRecord flattens a Result.
func ToRecord(r Result) Record {
	o := r.Common()
	rec := Record{
		Domain:                o.Domain,
		DomainConfidence:      o.DomainConfidence,
		Categories:            make([]CategoryRecord, 0, len(o.Categories)),
		ProcessingTimeSeconds: o.Elapsed.Seconds(),
		Method:                r.Method(),
		Rationale:             o.Rationale,
		DomainRanking:         o.DomainRanking,
		Notes:                 o.Notes,
		Profile: ProfileRecord{
			AgeRange:            o.Profile.AgeRange,
			SophisticationScore: o.Profile.SophisticationScore,
			SophisticationTier:  string(o.Profile.Tier),
			Interests:           o.Profile.Interests,
			Language:            o.Profile.Language,
		},
	}
	for _, c := range o.Categories {
		rec.Categories = append(rec.Categories, CategoryRecord{
			ID:         c.Category.ID,
			Name:       c.Category.Name,
			Confidence: c.Confidence,
			TierPath:   c.Category.TierPath,
			Rationale:  c.Rationale,
		})
	}
	if d, ok := r.(DegradedResult); ok {
		rec.DegradedReason = ReasonCode(d.Reason)
	}
	return rec
}

// FromRecord rebuilds the Result variant named by rec.Method.
func FromRecord(rec Record) (Result, error) {
	tier, ok := ParseTier(rec.Profile.SophisticationTier)
	if !ok && rec.Profile.SophisticationTier != "" {
		return nil, fmt.Errorf("record: unknown sophistication tier %q", rec.Profile.SophisticationTier)
	}
	o := Outcome{
		Domain:           rec.Domain,
		DomainConfidence: rec.DomainConfidence,
		DomainRanking:    rec.DomainRanking,
		Rationale:        rec.Rationale,
		Elapsed:          time.Duration(math.Round(rec.ProcessingTimeSeconds * float64(time.Second))),
		Notes:            rec.Notes,
		Profile: ReaderProfile{
			AgeRange:            rec.Profile.AgeRange,
			SophisticationScore: rec.Profile.SophisticationScore,
			Tier:                tier,
			Interests:           rec.Profile.Interests,
			Language:            rec.Profile.Language,
		},
	}
	for _, c := range rec.Categories {
		o.Categories = append(o.Categories, Candidate{
			Category: Category{
				ID:       c.ID,
				Name:     c.Name,
				Domain:   rec.Domain,
				TierPath: c.TierPath,
			},
			Confidence: c.Confidence,
			Rationale:  c.Rationale,
		})
	}

	switch rec.Method {
	case MethodVectorOnly:
		return VectorOnlyResult{o}, nil
	case MethodHybrid:
		return HybridResult{o}, nil
	case MethodDegraded:
		return DegradedResult{Outcome: o, Reason: reasonFromCode(rec.DegradedReason)}, nil
	default:
		return nil, fmt.Errorf("record: unknown method %q", rec.Method)
	}
}
