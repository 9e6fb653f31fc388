// Package reasoner asks an external reasoning provider to rank a bounded set
// of candidate categories and to describe the likely reader.
package reasoner

import (
	"context"

	"github.com/crimson-sun/tiermap/internal/model"
)

// Request is one fine-classification question.
type Request struct {
	Text       string
	Domain     string
	Candidates []model.Category
	MaxResults int
	// Strict re-instructs the provider after an unusable reply.
	Strict bool
}

// Pick is one category chosen by the provider. IDs are not trusted until the
// caller checks them against the candidates.
type Pick struct {
	ID         string
	Name       string
	Confidence float64
	Rationale  string
}

// ProfileHint is the provider's reader estimate. Zero fields mean "no opinion".
type ProfileHint struct {
	AgeRange            string
	SophisticationScore int
	Tier                string
	Interests           []string
}

// Verdict is a parsed provider reply.
type Verdict struct {
	Picks     []Pick
	Profile   *ProfileHint
	Rationale string
}

// Reasoner ranks candidates. Implementations return errors wrapping
// model.ErrReasoningUnavailable or model.ErrReasoningInvalidResponse.
type Reasoner interface {
	Reason(ctx context.Context, req Request) (Verdict, error)
}

// Func adapts a plain function to Reasoner.
type Func func(ctx context.Context, req Request) (Verdict, error)

// Reason calls f.
func (f Func) Reason(ctx context.Context, req Request) (Verdict, error) {
	return f(ctx, req)
}
