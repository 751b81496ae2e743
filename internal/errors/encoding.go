//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "fmt"

// UnsupportedCharacterError reports a literal that the target script
// encoding cannot represent. Characters are never substituted.
type UnsupportedCharacterError struct {
	Base Error `json:"error"`

	// Encoding is the target encoding name (e.g. "cp1252").
	Encoding string `json:"encoding"`

	// Field identifies where the literal came from (e.g. "EnvAppend.fragment").
	Field string `json:"field,omitempty"`

	// Value is the full offending string.
	Value string `json:"value"`

	// Char is the first character that cannot be encoded.
	Char rune `json:"char"`

	// Offset is the byte offset of Char within Value.
	Offset int `json:"offset"`
}

// NewUnsupportedCharacterError creates an UnsupportedCharacterError.
func NewUnsupportedCharacterError(encoding, field, value string, char rune, offset int) *UnsupportedCharacterError {
	return &UnsupportedCharacterError{
		Base: Error{
			Category: CategoryEncoding,
			Code:     CodeUnsupportedCharacter,
			Message:  fmt.Sprintf("character %q (U+%04X) cannot be represented in %s", char, char, encoding),
			Hint:     "Switch the project encoding to utf8 or remove the character.",
		},
		Encoding: encoding,
		Field:    field,
		Value:    value,
		Char:     char,
		Offset:   offset,
	}
}

// Error implements the error interface.
func (e *UnsupportedCharacterError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s in %q", e.Field, e.Base.Error(), e.Value)
	}
	return fmt.Sprintf("%s in %q", e.Base.Error(), e.Value)
}

// Unwrap returns the underlying error.
func (e *UnsupportedCharacterError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *UnsupportedCharacterError) Is(target error) bool {
	t, ok := target.(*UnsupportedCharacterError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
