package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing destination record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed request parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrArtifactMissing signals absent or unreadable model artifacts.
	ErrArtifactMissing = errors.New("model artifacts missing")
	// ErrNotReady signals that the recommender has no usable model generation.
	ErrNotReady = errors.New("recommender not ready")

	// ErrFit signals that a feature model could not be fitted.
	ErrFit = errors.New("fit failed")
	// ErrFitEmptyCorpus signals fitting on zero documents.
	ErrFitEmptyCorpus = fmt.Errorf("%w: empty corpus", ErrFit)
	// ErrFitEmptyVocabulary signals documents that produce no terms at all.
	ErrFitEmptyVocabulary = fmt.Errorf("%w: empty vocabulary, documents contain only stop words", ErrFit)
)

// NotReadyError wraps ErrNotReady with the reason the model could not be loaded.
type NotReadyError struct {
	Cause error
}

func (e *NotReadyError) Error() string {
	if e.Cause == nil {
		return ErrNotReady.Error()
	}
	return ErrNotReady.Error() + ": " + e.Cause.Error()
}

// Is reports ErrNotReady and, through Unwrap, the underlying cause.
func (e *NotReadyError) Is(target error) bool { return target == ErrNotReady }

func (e *NotReadyError) Unwrap() error { return e.Cause }

// NewNotReady creates a not-ready error with the given cause.
func NewNotReady(cause error) error {
	return &NotReadyError{Cause: cause}
}
