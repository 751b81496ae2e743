package action

import (
	"slices"
	"strings"
)

// Envelope is the serialised form of an action: a kind tag plus the
// fields of that kind. It is used for project files and plan exports.
type Envelope struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Files and programs
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	LinkTarget  string `json:"target,omitempty" yaml:"target,omitempty"`
	Arguments   string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Command     string `json:"command,omitempty" yaml:"command,omitempty"`
	Recursive   bool   `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	Wait        bool   `json:"wait,omitempty" yaml:"wait,omitempty"`

	// Registry
	Root      string   `json:"root,omitempty" yaml:"root,omitempty"`
	Key       string   `json:"key,omitempty" yaml:"key,omitempty"`
	ValueName string   `json:"valueName,omitempty" yaml:"valueName,omitempty"`
	ValueType string   `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	Data      string   `json:"data,omitempty" yaml:"data,omitempty"`
	Values    []string `json:"values,omitempty" yaml:"values,omitempty"`
	IfEmpty   bool     `json:"ifEmpty,omitempty" yaml:"ifEmpty,omitempty"`

	// Environment
	Scope     string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
	Fragment  string `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	Separator string `json:"separator,omitempty" yaml:"separator,omitempty"`
	Previous  string `json:"previous,omitempty" yaml:"previous,omitempty"`
	From      string `json:"from,omitempty" yaml:"from,omitempty"`
}

// allowedFields lists the envelope fields each kind may carry.
var allowedFields = map[Kind][]string{
	KindCopyFile:            {"source", "destination", "recursive"},
	KindCreateDir:           {"path"},
	KindCreateShortcut:      {"path", "target", "arguments", "icon"},
	KindExecPostInstall:     {"command", "arguments", "wait"},
	KindRegistryWrite:       {"root", "key", "valueName", "valueType", "data"},
	KindRegistryDeleteValue: {"root", "key", "valueName"},
	KindRegistryDeleteKey:   {"root", "key", "values", "ifEmpty"},
	KindEnvSet:              {"scope", "name", "value"},
	KindEnvAppend:           {"scope", "name", "fragment", "separator"},
	KindEnvPrepend:          {"scope", "name", "fragment", "separator"},
	KindEnvRemove:           {"scope", "name"},
	KindEnvRestore:          {"scope", "name", "previous"},
	KindEnvRemoveFragment:   {"scope", "name", "fragment", "separator", "from"},
	KindDeleteFile:          {"path", "recursive"},
	KindRemoveDir:           {"path"},
	KindDeleteShortcut:      {"path"},
}

// setFields returns the names of the non-zero fields.
func (e Envelope) setFields() []string {
	fields := []struct {
		name string
		set  bool
	}{
		{"source", e.Source != ""},
		{"destination", e.Destination != ""},
		{"path", e.Path != ""},
		{"target", e.LinkTarget != ""},
		{"arguments", e.Arguments != ""},
		{"icon", e.Icon != ""},
		{"command", e.Command != ""},
		{"recursive", e.Recursive},
		{"wait", e.Wait},
		{"root", e.Root != ""},
		{"key", e.Key != ""},
		{"valueName", e.ValueName != ""},
		{"valueType", e.ValueType != ""},
		{"data", e.Data != ""},
		{"values", len(e.Values) > 0},
		{"ifEmpty", e.IfEmpty},
		{"scope", e.Scope != ""},
		{"name", e.Name != ""},
		{"value", e.Value != ""},
		{"fragment", e.Fragment != ""},
		{"separator", e.Separator != ""},
		{"previous", e.Previous != ""},
		{"from", e.From != ""},
	}
	var out []string
	for _, f := range fields {
		if f.set {
			out = append(out, f.name)
		}
	}
	return out
}

// Decode validates the envelope and builds the action it describes.
// Fields that do not belong to the kind are rejected.
func (e Envelope) Decode() (Action, error) {
	kind, err := ParseKind(string(e.Kind))
	if err != nil {
		return nil, err
	}
	allowed := allowedFields[kind]
	for _, f := range e.setFields() {
		if !slices.Contains(allowed, f) {
			return nil, invalid(kind, f, "one of "+strings.Join(allowed, ", "), "unexpected field")
		}
	}

	switch kind {
	case KindCopyFile:
		return NewCopyFile(e.Source, e.Destination, e.Recursive)
	case KindCreateDir:
		return NewCreateDir(e.Path)
	case KindCreateShortcut:
		return NewCreateShortcut(e.Path, e.LinkTarget, e.Arguments, e.Icon)
	case KindExecPostInstall:
		return NewExecPostInstall(e.Command, e.Arguments, e.Wait)
	case KindDeleteFile:
		return NewDeleteFile(e.Path, e.Recursive)
	case KindRemoveDir:
		return NewRemoveDir(e.Path)
	case KindDeleteShortcut:
		return NewDeleteShortcut(e.Path)
	case KindRegistryWrite, KindRegistryDeleteValue, KindRegistryDeleteKey:
		return e.decodeRegistry(kind)
	default:
		return e.decodeEnv(kind)
	}
}

func (e Envelope) decodeRegistry(kind Kind) (Action, error) {
	root, err := ParseRoot(e.Root)
	if err != nil {
		return nil, invalid(kind, "root", "one of HKLM, HKCU, HKCR, HKU, HKCC, SHCTX", e.Root)
	}
	switch kind {
	case KindRegistryWrite:
		vt, err := ParseValueType(e.ValueType)
		if err != nil {
			return nil, invalid(kind, "valueType", "string, expandstring, dword or binary", e.ValueType)
		}
		return NewRegistryWrite(root, e.Key, e.ValueName, vt, e.Data)
	case KindRegistryDeleteValue:
		return NewRegistryDeleteValue(root, e.Key, e.ValueName)
	default:
		return NewRegistryDeleteKey(root, e.Key, e.Values, e.IfEmpty)
	}
}

func (e Envelope) decodeEnv(kind Kind) (Action, error) {
	scope, err := ParseScope(e.Scope)
	if err != nil {
		return nil, invalid(kind, "scope", "process, user or system", e.Scope)
	}
	switch kind {
	case KindEnvSet:
		return NewEnvSet(scope, e.Name, e.Value)
	case KindEnvAppend:
		return NewEnvAppend(scope, e.Name, e.Fragment, e.Separator)
	case KindEnvPrepend:
		return NewEnvPrepend(scope, e.Name, e.Fragment, e.Separator)
	case KindEnvRemove:
		return NewEnvRemove(scope, e.Name)
	case KindEnvRestore:
		return NewEnvRestore(scope, e.Name, e.Previous)
	case KindEnvRemoveFragment:
		from, err := ParsePosition(e.From)
		if err != nil {
			return nil, invalid(kind, "from", "start or end", e.From)
		}
		return NewEnvRemoveFragment(scope, e.Name, e.Fragment, e.Separator, from)
	default:
		return nil, invalid(kind, "kind", "known action kind", string(kind))
	}
}

// ToEnvelope converts an action into its serialisable form.
func ToEnvelope(a Action) Envelope {
	e := Envelope{Kind: a.Kind()}
	switch v := a.(type) {
	case CopyFile:
		e.Source, e.Destination, e.Recursive = v.source, v.destination, v.recursive
	case CreateDir:
		e.Path = v.path
	case CreateShortcut:
		e.Path, e.LinkTarget, e.Arguments, e.Icon = v.path, v.target, v.arguments, v.icon
	case ExecPostInstall:
		e.Command, e.Arguments, e.Wait = v.command, v.arguments, v.wait
	case DeleteFile:
		e.Path, e.Recursive = v.path, v.recursive
	case RemoveDir:
		e.Path = v.path
	case DeleteShortcut:
		e.Path = v.path
	case RegistryWrite:
		e.Root, e.Key, e.ValueName, e.ValueType, e.Data = string(v.root), v.key, v.valueName, string(v.valueType), v.data
	case RegistryDeleteValue:
		e.Root, e.Key, e.ValueName = string(v.root), v.key, v.valueName
	case RegistryDeleteKey:
		e.Root, e.Key, e.Values, e.IfEmpty = string(v.root), v.key, v.Values(), v.ifEmpty
	case EnvSet:
		e.Scope, e.Name, e.Value = string(v.scope), v.name, v.value
	case EnvAppend:
		e.Scope, e.Name, e.Fragment, e.Separator = string(v.scope), v.name, v.fragment, v.separator
	case EnvPrepend:
		e.Scope, e.Name, e.Fragment, e.Separator = string(v.scope), v.name, v.fragment, v.separator
	case EnvRemove:
		e.Scope, e.Name = string(v.scope), v.name
	case EnvRestore:
		e.Scope, e.Name, e.Previous = string(v.scope), v.name, v.previous
	case EnvRemoveFragment:
		e.Scope, e.Name, e.Fragment, e.Separator, e.From = string(v.scope), v.name, v.fragment, v.separator, string(v.from)
	}
	return e
}
