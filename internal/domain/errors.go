package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the requested quiz id does not exist in the
	// store. It is deliberately distinct from PersistenceError so callers can
	// decide between a bounded retry and a terminal "quiz missing" message.
	ErrQuizNotFound = errors.New("quiz not found")
)

// ValidationError is a local failure that never reaches the store: empty
// username, incomplete answer set, or malformed generated content.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a rejected read or write against the external
// store. It is never retried automatically; the triggering action stays
// re-attemptable by the user.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err with the failing operation name.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// UpstreamKind distinguishes the two user-facing flavors of a failed
// generation call.
type UpstreamKind int

const (
	// UpstreamUnreachable means the AI or transcript service could not be
	// reached or answered with a non-success status.
	UpstreamUnreachable UpstreamKind = iota
	// UpstreamMalformed means the service answered but the content failed
	// parsing or quiz validation.
	UpstreamMalformed
)

// UpstreamGenerationError reports a failed AI generation or transcript call.
type UpstreamGenerationError struct {
	Kind UpstreamKind
	Err  error
}

func (e *UpstreamGenerationError) Error() string {
	switch e.Kind {
	case UpstreamMalformed:
		return fmt.Sprintf("upstream response malformed: %v", e.Err)
	default:
		return fmt.Sprintf("could not reach upstream service: %v", e.Err)
	}
}

func (e *UpstreamGenerationError) Unwrap() error { return e.Err }
