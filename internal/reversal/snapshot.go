package reversal

import (
	"strings"

	"github.com/terassyi/nsid/internal/action"
)

// Presence describes what is known about a piece of state before
// installation.
type Presence int

const (
	// Unknown means nothing was captured; the planner assumes the worst
	// case for deletions.
	Unknown Presence = iota
	// Absent means the item was captured as not existing.
	Absent
	// Present means the item existed and its value was captured.
	Present
)

func (p Presence) String() string {
	switch p {
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// RegistryValue is a captured registry value.
type RegistryValue struct {
	Type action.ValueType `json:"type" yaml:"type"`
	Data string           `json:"data" yaml:"data"`
}

// Snapshot answers questions about the state of the target machine before
// installation.
type Snapshot interface {
	// Key reports whether a registry key existed.
	Key(root action.Root, key string) Presence
	// Value returns a registry value that existed.
	Value(root action.Root, key, name string) (RegistryValue, Presence)
	// Env returns the previous value of an environment variable.
	Env(scope action.Scope, name string) (string, Presence)
}

// EmptySnapshot knows nothing about the target machine.
type EmptySnapshot struct{}

func (EmptySnapshot) Key(action.Root, string) Presence { return Unknown }

func (EmptySnapshot) Value(action.Root, string, string) (RegistryValue, Presence) {
	return RegistryValue{}, Unknown
}

func (EmptySnapshot) Env(action.Scope, string) (string, Presence) { return "", Unknown }

// StaticSnapshot is a snapshot declared up front, typically in the
// project file. Keys and environment names are matched case-insensitively
// as Windows does.
type StaticSnapshot struct {
	// Keys maps "ROOT\sub\key" to whether it existed.
	Keys map[string]bool `json:"keys,omitempty" yaml:"keys,omitempty"`
	// Values maps "ROOT\sub\key" to value name to captured value.
	Values map[string]map[string]RegistryValue `json:"values,omitempty" yaml:"values,omitempty"`
	// Vars maps "scope/NAME" to the captured value. A nil entry means the
	// variable did not exist.
	Vars map[string]*string `json:"env,omitempty" yaml:"env,omitempty"`
}

// KeyPath joins a root and subkey into the form used by StaticSnapshot.
func KeyPath(root action.Root, key string) string {
	return string(root) + `\` + strings.Trim(key, `\`)
}

// EnvPath joins a scope and variable name into the form used by
// StaticSnapshot.
func EnvPath(scope action.Scope, name string) string {
	return string(scope) + "/" + name
}

func lookupFold[V any](m map[string]V, key string) (V, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (s *StaticSnapshot) Key(root action.Root, key string) Presence {
	if s == nil {
		return Unknown
	}
	existed, ok := lookupFold(s.Keys, KeyPath(root, key))
	if !ok {
		if _, hasValues := lookupFold(s.Values, KeyPath(root, key)); hasValues {
			return Present
		}
		return Unknown
	}
	if existed {
		return Present
	}
	return Absent
}

func (s *StaticSnapshot) Value(root action.Root, key, name string) (RegistryValue, Presence) {
	if s == nil {
		return RegistryValue{}, Unknown
	}
	values, ok := lookupFold(s.Values, KeyPath(root, key))
	if !ok {
		if s.Key(root, key) == Absent {
			return RegistryValue{}, Absent
		}
		return RegistryValue{}, Unknown
	}
	v, ok := lookupFold(values, name)
	if !ok {
		// A captured key lists all of its values.
		return RegistryValue{}, Absent
	}
	return v, Present
}

func (s *StaticSnapshot) Env(scope action.Scope, name string) (string, Presence) {
	if s == nil {
		return "", Unknown
	}
	v, ok := lookupFold(s.Vars, EnvPath(scope, name))
	if !ok {
		return "", Unknown
	}
	if v == nil {
		return "", Absent
	}
	return *v, Present
}
