package nlp

import (
	"errors"
	"fmt"
)

// Common annotation errors
var (
	// ErrEmptyText indicates there was nothing to annotate
	ErrEmptyText = errors.New("no text to annotate")

	// ErrAnnotatorUnavailable indicates the backend could not be reached or loaded
	ErrAnnotatorUnavailable = errors.New("annotator unavailable")

	// ErrCGORequired indicates the backend needs a cgo build
	ErrCGORequired = errors.New("backend requires a cgo build")

	// ErrUnknownProvider indicates an unsupported provider ID
	ErrUnknownProvider = errors.New("unknown annotation provider")
)

// AnnotationError reports a failed Annotate call on a named backend.
type AnnotationError struct {
	Backend string
	Err     error
}

func (e *AnnotationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("annotation failed (%s)", e.Backend)
	}
	return fmt.Sprintf("annotation failed (%s): %v", e.Backend, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AnnotationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for AnnotationError.
// This allows errors.Is(err, &AnnotationError{}) to work with wrapped errors.
func (e *AnnotationError) Is(target error) bool {
	_, ok := target.(*AnnotationError)
	return ok
}

// NewAnnotationError wraps err as a failure of backend.
func NewAnnotationError(backend string, err error) *AnnotationError {
	return &AnnotationError{Backend: backend, Err: err}
}
