package ideas

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced idea or actor does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVotingClosed is returned when a vote targets an idea that no longer accepts votes.
	ErrVotingClosed = errors.New("voting is closed for this idea")

	// ErrForbidden is returned when the actor lacks the role or permission for an action.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrInvalidTransition is returned when a status change targets a non-pending idea.
	ErrInvalidTransition = errors.New("idea is no longer pending")

	// ErrVoteConflict is returned by storage when an insert hits the (idea, user) unique index.
	ErrVoteConflict = errors.New("vote already exists for this idea and user")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid input"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
