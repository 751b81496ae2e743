package action

import (
	"strings"

	nsiderr "github.com/terassyi/nsid/internal/errors"
)

// Action is an atomic installer effect. The set of implementations is
// closed; switch on the concrete type to handle every variant.
type Action interface {
	// Kind returns the variant identifier.
	Kind() Kind
	// Target returns the path, key or variable name the action affects.
	Target() string

	isAction()
}

func invalid(kind Kind, field, expected, got string) error {
	return nsiderr.NewInvalidActionError(string(kind), field, expected, got)
}

func requireNonEmpty(kind Kind, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(kind, field, "non-empty value", value)
	}
	return nil
}

func requireNoNUL(kind Kind, field, value string) error {
	if strings.ContainsRune(value, 0) {
		return invalid(kind, field, "string without NUL characters", value)
	}
	return nil
}
