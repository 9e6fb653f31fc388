package model

import (
	"errors"
	"time"
)

// Method labels which code path produced a result.
type Method string

const (
	MethodVectorOnly Method = "vector_only"
	MethodHybrid     Method = "hybrid"
	MethodDegraded   Method = "degraded"
)

// Outcome holds the fields shared by every result variant.
type Outcome struct {
	Domain           string
	DomainConfidence float64
	DomainRanking    []DomainScore
	Categories       []Candidate // sorted by confidence desc, ties by id asc
	Profile          ReaderProfile
	Rationale        string
	Elapsed          time.Duration
	Notes            []string
}

// Result is one of VectorOnlyResult, HybridResult or DegradedResult. The
// variant determines Method, so the label always matches the populated fields.
type Result interface {
	Method() Method
	Common() Outcome
	sealed()
}

// VectorOnlyResult is produced when only coarse detection ran: the fine stage
// was disabled or the domain score fell below the configured floor.
type VectorOnlyResult struct{ Outcome }

// HybridResult is produced when the reasoning provider ranked the candidates.
type HybridResult struct{ Outcome }

// DegradedResult is produced when fine classification fell back to local
// heuristics. Reason is the recoverable error that caused the downgrade.
type DegradedResult struct {
	Outcome
	Reason error
}

func (VectorOnlyResult) Method() Method { return MethodVectorOnly }
func (HybridResult) Method() Method     { return MethodHybrid }
func (DegradedResult) Method() Method   { return MethodDegraded }

func (r VectorOnlyResult) Common() Outcome { return r.Outcome }
func (r HybridResult) Common() Outcome     { return r.Outcome }
func (r DegradedResult) Common() Outcome   { return r.Outcome }

func (VectorOnlyResult) sealed() {}
func (HybridResult) sealed()     {}
func (DegradedResult) sealed()   {}

// reason codes used by the plain-mapping form.
const (
	reasonEmptyCategorySet = "empty_category_set"
	reasonUnavailable      = "reasoning_unavailable"
	reasonInvalidResponse  = "reasoning_invalid_response"
	reasonCancelled        = "cancelled"
)

// ReasonCode maps a degradation cause onto a stable string.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCategorySet):
		return reasonEmptyCategorySet
	case errors.Is(err, ErrReasoningInvalidResponse):
		return reasonInvalidResponse
	case errors.Is(err, ErrReasoningUnavailable):
		return reasonUnavailable
	default:
		return reasonCancelled
	}
}

func reasonFromCode(code string) error {
	switch code {
	case "":
		return nil
	case reasonEmptyCategorySet:
		return ErrEmptyCategorySet
	case reasonInvalidResponse:
		return ErrReasoningInvalidResponse
	case reasonUnavailable:
		return ErrReasoningUnavailable
	default:
		return errors.New(code)
	}
}
