package model

import "strings"

// Category is a node of the content taxonomy. Identity is ID; names are not
// unique across domains.
type Category struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`             // top-level (tier 1) domain name
	TierPath []string `json:"tier_path,omitempty"` // domain → tier 2 → tier 3 → tier 4
}

// Depth returns the tier level of the category (1 for a top-level domain).
func (c Category) Depth() int {
	if len(c.TierPath) == 0 {
		return 1
	}
	return len(c.TierPath)
}

// Path joins the tier path with " > " for display.
func (c Category) Path() string {
	return strings.Join(c.TierPath, " > ")
}

// DomainEmbedding associates a top-level domain with the vector of its
// aggregate description.
type DomainEmbedding struct {
	Domain string
	Vector []float32
}

// DomainScore is one entry of a coarse domain ranking.
type DomainScore struct {
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
}

// Candidate is a ranked fine-grained category with confidence in [0,1].
type Candidate struct {
	Category   Category
	Confidence float64
	Rationale  string
}
