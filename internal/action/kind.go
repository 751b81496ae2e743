// Package action defines the typed, immutable effects an installer script
// can have and the ordered sequences they are grouped into.
//
// Every action is one variant of a closed set. Variants keep their fields
// unexported and are only obtainable through constructors that validate
// them, so a value of type Action is always well-formed.
package action

import (
	"fmt"
	"strings"

	nsiderr "github.com/terassyi/nsid/internal/errors"
)

// Kind identifies an action variant.
type Kind string

const (
	// Forward kinds, written by the package author.
	KindCopyFile            Kind = "CopyFile"
	KindCreateDir           Kind = "CreateDir"
	KindCreateShortcut      Kind = "CreateShortcut"
	KindRegistryWrite       Kind = "RegistryWrite"
	KindRegistryDeleteValue Kind = "RegistryDeleteValue"
	KindRegistryDeleteKey   Kind = "RegistryDeleteKey"
	KindEnvSet              Kind = "EnvSet"
	KindEnvAppend           Kind = "EnvAppend"
	KindEnvPrepend          Kind = "EnvPrepend"
	KindEnvRemove           Kind = "EnvRemove"
	KindExecPostInstall     Kind = "ExecPostInstall"

	// Reverse-only kinds, produced by the reversal planner.
	KindDeleteFile        Kind = "DeleteFile"
	KindRemoveDir         Kind = "RemoveDir"
	KindDeleteShortcut    Kind = "DeleteShortcut"
	KindEnvRestore        Kind = "EnvRestore"
	KindEnvRemoveFragment Kind = "EnvRemoveFragment"
)

var forwardKinds = []Kind{
	KindCopyFile,
	KindCreateDir,
	KindCreateShortcut,
	KindRegistryWrite,
	KindRegistryDeleteValue,
	KindRegistryDeleteKey,
	KindEnvSet,
	KindEnvAppend,
	KindEnvPrepend,
	KindEnvRemove,
	KindExecPostInstall,
}

var reverseOnlyKinds = []Kind{
	KindDeleteFile,
	KindRemoveDir,
	KindDeleteShortcut,
	KindEnvRestore,
	KindEnvRemoveFragment,
}

// ForwardKinds returns the kinds a package author may use.
func ForwardKinds() []Kind {
	return append([]Kind(nil), forwardKinds...)
}

// AllKinds returns every known kind.
func AllKinds() []Kind {
	return append(ForwardKinds(), reverseOnlyKinds...)
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", nsiderr.NewInvalidActionError(s, "kind", "one of "+kindList(AllKinds()), s)
}

// IsReverseOnly reports whether k is only produced by the reversal planner.
func (k Kind) IsReverseOnly() bool {
	for _, r := range reverseOnlyKinds {
		if k == r {
			return true
		}
	}
	return false
}

func kindList(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Scope is the environment block an environment action targets.
type Scope string

const (
	ScopeProcess Scope = "process"
	ScopeUser    Scope = "user"
	ScopeSystem  Scope = "system"
)

// ParseScope parses an environment scope. An empty string yields
// ScopeUser.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "", "user":
		return ScopeUser, nil
	case "system", "machine":
		return ScopeSystem, nil
	case "process":
		return ScopeProcess, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

// Position selects which end of a list a fragment edit applies to.
type Position string

const (
	PositionStart Position = "start"
	PositionEnd   Position = "end"
)

// ParsePosition parses a list position.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(s) {
	case "start":
		return PositionStart, nil
	case "", "end":
		return PositionEnd, nil
	default:
		return "", fmt.Errorf("unknown position %q", s)
	}
}

// DefaultSeparator is the Windows path-list separator.
const DefaultSeparator = ";"
