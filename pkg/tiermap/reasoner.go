package tiermap

import (
	"context"

	"github.com/crimson-sun/tiermap/internal/engine/reasoner"
	"github.com/crimson-sun/tiermap/internal/model"
)

// Errors a caller may match with errors.Is. ErrConfiguration and
// ErrEmbeddingUnavailable fail a call; a Reasoner returns the other two to
// have the result degraded instead.
var (
	ErrConfiguration            = model.ErrConfiguration
	ErrEmbeddingUnavailable     = model.ErrEmbeddingUnavailable
	ErrReasoningUnavailable     = model.ErrReasoningUnavailable
	ErrReasoningInvalidResponse = model.ErrReasoningInvalidResponse
)

// ReasonRequest asks a Reasoner to rank candidates for a text.
type ReasonRequest struct {
	Text       string
	Domain     string
	Candidates []Category
	MaxResults int
	// Strict is set on the single retry after an unusable reply.
	Strict bool
}

// Pick is one ranked candidate in a ReasonReply.
type Pick struct {
	ID         string
	Confidence float64
	Rationale  string
}

// ReasonReply is a Reasoner's answer. Zero profile fields mean no opinion.
type ReasonReply struct {
	Picks               []Pick
	AgeRange            string
	SophisticationScore int
	Interests           []string
	Rationale           string
}

// Reasoner ranks the candidate categories of a domain, typically by calling
// a language model. Unknown IDs in a reply are discarded.
type Reasoner interface {
	Reason(ctx context.Context, req ReasonRequest) (ReasonReply, error)
}

// ReasonerFunc adapts a function to Reasoner.
type ReasonerFunc func(ctx context.Context, req ReasonRequest) (ReasonReply, error)

func (f ReasonerFunc) Reason(ctx context.Context, req ReasonRequest) (ReasonReply, error) {
	return f(ctx, req)
}

func adaptReasoner(r Reasoner) reasoner.Reasoner {
	return reasoner.Func(func(ctx context.Context, req reasoner.Request) (reasoner.Verdict, error) {
		pub := ReasonRequest{
			Text:       req.Text,
			Domain:     req.Domain,
			Candidates: categoriesFromModel(req.Candidates),
			MaxResults: req.MaxResults,
			Strict:     req.Strict,
		}
		reply, err := r.Reason(ctx, pub)
		if err != nil {
			return reasoner.Verdict{}, err
		}
		v := reasoner.Verdict{Rationale: reply.Rationale}
		for _, p := range reply.Picks {
			v.Picks = append(v.Picks, reasoner.Pick{ID: p.ID, Confidence: p.Confidence, Rationale: p.Rationale})
		}
		if reply.AgeRange != "" || reply.SophisticationScore != 0 || len(reply.Interests) > 0 {
			v.Profile = &reasoner.ProfileHint{
				AgeRange:            reply.AgeRange,
				SophisticationScore: reply.SophisticationScore,
				Interests:           reply.Interests,
			}
		}
		return v, nil
	})
}
