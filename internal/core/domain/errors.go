package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Prediction Errors
// ============================================================================

// Validation errors
var (
	ErrInvalidInput = errors.New("invalid prediction input")
)

// Model resolution errors
var (
	ErrUnknownModel          = errors.New("unknown model")
	ErrAdapterConfiguration  = errors.New("adapter configuration error")
	ErrArtifactUnavailable   = errors.New("model artifact unavailable")
	ErrCorruptedArtifact     = errors.New("corrupted model artifact")
	ErrPredictionFailed      = errors.New("model prediction failed")
	ErrBlobNotFound          = errors.New("blob not found")
	ErrBlobStoreNotAvailable = errors.New("blob store not available")
)

// ValidationError reports the input field that violated a domain constraint.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %v)", ErrInvalidInput, e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ArtifactUnavailableError is returned when an artifact could not be resolved
// from any tier. It matches both ErrArtifactUnavailable and the remote cause.
type ArtifactUnavailableError struct {
	Model ModelName
	Err   error
}

func (e *ArtifactUnavailableError) Error() string {
	return fmt.Sprintf("%s: failed to download model %s: %v", ErrArtifactUnavailable, e.Model, e.Err)
}

func (e *ArtifactUnavailableError) Unwrap() []error {
	return []error{ErrArtifactUnavailable, e.Err}
}

// PredictionError wraps a failure raised by a model's native scoring call.
type PredictionError struct {
	Model ModelName
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPredictionFailed, e.Model, e.Err)
}

func (e *PredictionError) Unwrap() []error {
	return []error{ErrPredictionFailed, e.Err}
}

// UnknownModelError builds the error returned for names outside the closed set.
func UnknownModelError(name ModelName) error {
	return fmt.Errorf("%w: %q", ErrUnknownModel, string(name))
}
