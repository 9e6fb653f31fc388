package model

// SophisticationTier buckets the technical sophistication score.
type SophisticationTier string

const (
	TierBasic        SophisticationTier = "basic"
	TierIntermediate SophisticationTier = "intermediate"
	TierAdvanced     SophisticationTier = "advanced"
)

const (
	MinSophistication = 1
	MaxSophistication = 10
)

// TierForScore maps a 1–10 score onto its tier: ≤3 basic, 4–7 intermediate, ≥8 advanced.
func TierForScore(score int) SophisticationTier {
	switch {
	case score <= 3:
		return TierBasic
	case score <= 7:
		return TierIntermediate
	default:
		return TierAdvanced
	}
}

// ParseTier returns the tier for s and whether s named a known tier.
func ParseTier(s string) (SophisticationTier, bool) {
	switch SophisticationTier(s) {
	case TierBasic, TierIntermediate, TierAdvanced:
		return SophisticationTier(s), true
	}
	return "", false
}

// ReaderProfile describes the inferred audience of a text.
type ReaderProfile struct {
	AgeRange            string
	SophisticationScore int
	Tier                SophisticationTier
	Interests           []string // only populated for the extended field set
	Language            string   // only populated for the extended field set
}

// ClampScore bounds the sophistication score to 1–10 and re-derives the tier
// so that the two fields can never disagree.
func (p ReaderProfile) ClampScore() ReaderProfile {
	if p.SophisticationScore < MinSophistication {
		p.SophisticationScore = MinSophistication
	}
	if p.SophisticationScore > MaxSophistication {
		p.SophisticationScore = MaxSophistication
	}
	p.Tier = TierForScore(p.SophisticationScore)
	return p
}
