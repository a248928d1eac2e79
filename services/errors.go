package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingOwner: the call arrived without a resolvable owner id.
	ErrMissingOwner = errors.New("owner id is required")
	// ErrInvalidInput: empty text, missing image, no items, and similar
	// client-side mistakes.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamUnavailable: a capability provider timed out or was
	// unreachable. Distinct from parse failures so callers can choose
	// retry vs. fall back to manual entry.
	ErrUpstreamUnavailable = errors.New("estimation provider unavailable")
)

// FailureKind labels the recoverable estimation failures.
type FailureKind string

const (
	UnparseableVisionResponse FailureKind = "unparseable_vision_response"
	UnparseableMacroResponse  FailureKind = "unparseable_macro_response"
)

// EstimationError is a recoverable pipeline failure: the upstream answered
// but its output could not be turned into a canonical record. It carries a
// hint the client can show; the raw upstream body never leaves the server.
type EstimationError struct {
	Kind FailureKind
	Hint string
	Err  error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("estimation failed (%s): %v", e.Kind, e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

func newVisionParseError(err error) *EstimationError {
	return &EstimationError{
		Kind: UnparseableVisionResponse,
		Hint: "could not read the photo; try a clearer, closer shot",
		Err:  err,
	}
}

func newMacroParseError(err error) *EstimationError {
	return &EstimationError{
		Kind: UnparseableMacroResponse,
		Hint: "could not estimate from this description; try text entry instead",
		Err:  err,
	}
}
