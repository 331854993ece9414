package action

import "fmt"

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	ErrSchema             ErrorKind = "schema"
	ErrDuplicateID        ErrorKind = "duplicate_id"
	ErrUnknownReference   ErrorKind = "unknown_reference"
	ErrCircularDependency ErrorKind = "circular_dependency"
	ErrInvalidCondition   ErrorKind = "invalid_condition"
	ErrInvalidTarget      ErrorKind = "invalid_target"
)

// ValidationError is one diagnostic produced while parsing a script.
// Index is the position of the offending top-level action, or -1 when the
// error is not attributable to a single action. ActionID and Path are set
// when known.
type ValidationError struct {
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
	Index    int       `json:"index"`
	ActionID string    `json:"action_id,omitempty"`
	Path     string    `json:"path,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a ValidationError with no position information.
func NewError(kind ErrorKind, format string, args ...any) ValidationError {
	return ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...), Index: -1}
}
