//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "fmt"

// InvalidActionError reports a malformed action. It is fatal: the action
// is never constructed and the caller must not continue with a partial
// sequence.
type InvalidActionError struct {
	Base Error `json:"error"`

	// Kind is the action kind being constructed.
	Kind string `json:"kind,omitempty"`

	// Field is the field that failed validation.
	Field string `json:"field,omitempty"`

	// Expected describes what was expected.
	Expected string `json:"expected,omitempty"`

	// Got describes what was received.
	Got string `json:"got,omitempty"`
}

// NewInvalidActionError creates an InvalidActionError.
func NewInvalidActionError(kind, field, expected, got string) *InvalidActionError {
	msg := fmt.Sprintf("invalid %s action", kind)
	if field != "" {
		msg = fmt.Sprintf("invalid %s action: field %q", kind, field)
	}
	return &InvalidActionError{
		Base: Error{
			Category: CategoryAction,
			Code:     CodeInvalidAction,
			Message:  msg,
		},
		Kind:     kind,
		Field:    field,
		Expected: expected,
		Got:      got,
	}
}

// WithCause sets the underlying error.
func (e *InvalidActionError) WithCause(cause error) *InvalidActionError {
	e.Base.Cause = cause
	return e
}

// Error implements the error interface.
func (e *InvalidActionError) Error() string {
	s := e.Base.Error()
	if e.Expected != "" {
		s += fmt.Sprintf(" (expected %s, got %q)", e.Expected, e.Got)
	}
	return s
}

// Unwrap returns the underlying error.
func (e *InvalidActionError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *InvalidActionError) Is(target error) bool {
	t, ok := target.(*InvalidActionError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
