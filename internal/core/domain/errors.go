package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported-format")
	ErrNoteNotFound      = errors.New("note not found")
	ErrUploadInFlight    = errors.New("upload already in flight")
	ErrJobNotFound       = errors.New("upload job not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPersistence       = errors.New("persistence failure")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// Extraction failure reasons.
const (
	ExtractMalformed   = "malformed"
	ExtractNoTextLayer = "no-text-layer"
)

// ExtractionError reports why a PDF yielded no usable text.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pdf extraction failed: %s", e.Reason)
	}
	return fmt.Sprintf("pdf extraction failed: %s: %v", e.Reason, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ModelAttempt records one failed candidate in a fallback cascade.
type ModelAttempt struct {
	ModelID string
	Err     error
}

// AggregateFailure is raised after every candidate in a cascade has failed.
// The message centers on the last attempt; the full attempt list stays
// available for diagnostics.
type AggregateFailure struct {
	Attempts []ModelAttempt
}

func (e *AggregateFailure) Error() string {
	if len(e.Attempts) == 0 {
		return "all model candidates failed"
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("all %d model candidates failed, last (%s): %v", len(e.Attempts), last.ModelID, last.Err)
}

// MalformedResponse means the provider answered at the transport level but
// the payload did not conform to the expected schema. Raw is kept for logs,
// never discarded silently.
type MalformedResponse struct {
	Raw string
	Err error
}

func (e *MalformedResponse) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponse) Unwrap() error { return e.Err }
