package model

import (
	"errors"
	"fmt"
)

// Call-level failures. Only ErrEmbeddingUnavailable and ErrConfiguration ever
// reach a caller; the others are absorbed into a degraded result.
var (
	ErrEmbeddingUnavailable     = errors.New("embedding unavailable")
	ErrEmptyCategorySet         = errors.New("empty category set")
	ErrReasoningInvalidResponse = errors.New("reasoning returned an invalid response")
	ErrReasoningUnavailable     = errors.New("reasoning unavailable")
	ErrConfiguration            = errors.New("configuration error")
)

// Stage names a step of the per-call state machine.
type Stage string

const (
	StageStart           Stage = "start"
	StageEmbedding       Stage = "embedding"
	StageDomainDetection Stage = "domain_detection"
	StageSubset          Stage = "subset"
	StageFine            Stage = "fine_classification"
	StageAssemble        Stage = "assemble"
)

// StageError records which stage failed. It unwraps to both the sentinel
// (Kind) and the underlying cause.
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Fail builds a StageError.
func Fail(stage Stage, kind, cause error) error {
	return &StageError{Stage: stage, Kind: kind, Err: cause}
}

// Configf builds a configuration error at call entry.
func Configf(format string, args ...any) error {
	return &StageError{Stage: StageStart, Kind: ErrConfiguration, Err: fmt.Errorf(format, args...)}
}

// FailedStage returns the stage recorded in err, or "" if err carries none.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
