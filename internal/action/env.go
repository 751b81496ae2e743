package action

import "strings"

func validateEnvName(kind Kind, name string) error {
	if err := requireNonEmpty(kind, "name", name); err != nil {
		return err
	}
	if strings.ContainsAny(name, "=\x00") {
		return invalid(kind, "name", "variable name without '=' or NUL", name)
	}
	return nil
}

func validateScope(kind Kind, scope Scope) error {
	switch scope {
	case ScopeProcess, ScopeUser, ScopeSystem:
		return nil
	default:
		return invalid(kind, "scope", "process, user or system", string(scope))
	}
}

func validateFragment(kind Kind, fragment, separator string) error {
	if err := requireNonEmpty(kind, "fragment", fragment); err != nil {
		return err
	}
	if err := requireNoNUL(kind, "fragment", fragment); err != nil {
		return err
	}
	if separator == "" {
		return invalid(kind, "separator", "non-empty separator", separator)
	}
	if strings.HasPrefix(fragment, separator) || strings.HasSuffix(fragment, separator) {
		return invalid(kind, "fragment", "fragment without leading or trailing separator", fragment)
	}
	return nil
}

// EnvSet sets an environment variable, replacing any previous value.
type EnvSet struct {
	scope Scope
	name  string
	value string
}

// NewEnvSet creates an EnvSet action.
func NewEnvSet(scope Scope, name, value string) (EnvSet, error) {
	if err := validateScope(KindEnvSet, scope); err != nil {
		return EnvSet{}, err
	}
	if err := validateEnvName(KindEnvSet, name); err != nil {
		return EnvSet{}, err
	}
	if err := requireNoNUL(KindEnvSet, "value", value); err != nil {
		return EnvSet{}, err
	}
	return EnvSet{scope: scope, name: name, value: value}, nil
}

func (EnvSet) Kind() Kind       { return KindEnvSet }
func (a EnvSet) Target() string { return a.name }
func (a EnvSet) Scope() Scope   { return a.scope }
func (a EnvSet) Name() string   { return a.name }
func (a EnvSet) Value() string  { return a.value }
func (EnvSet) isAction()        {}

// EnvAppend adds Fragment at the end of a separator-delimited variable.
type EnvAppend struct {
	scope     Scope
	name      string
	fragment  string
	separator string
}

// NewEnvAppend creates an EnvAppend action. An empty separator defaults to
// DefaultSeparator.
func NewEnvAppend(scope Scope, name, fragment, separator string) (EnvAppend, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	if err := validateScope(KindEnvAppend, scope); err != nil {
		return EnvAppend{}, err
	}
	if err := validateEnvName(KindEnvAppend, name); err != nil {
		return EnvAppend{}, err
	}
	if err := validateFragment(KindEnvAppend, fragment, separator); err != nil {
		return EnvAppend{}, err
	}
	return EnvAppend{scope: scope, name: name, fragment: fragment, separator: separator}, nil
}

func (EnvAppend) Kind() Kind          { return KindEnvAppend }
func (a EnvAppend) Target() string    { return a.name }
func (a EnvAppend) Scope() Scope      { return a.scope }
func (a EnvAppend) Name() string      { return a.name }
func (a EnvAppend) Fragment() string  { return a.fragment }
func (a EnvAppend) Separator() string { return a.separator }
func (EnvAppend) isAction()           {}

// EnvPrepend adds Fragment at the start of a separator-delimited variable.
type EnvPrepend struct {
	scope     Scope
	name      string
	fragment  string
	separator string
}

// NewEnvPrepend creates an EnvPrepend action. An empty separator defaults
// to DefaultSeparator.
func NewEnvPrepend(scope Scope, name, fragment, separator string) (EnvPrepend, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	if err := validateScope(KindEnvPrepend, scope); err != nil {
		return EnvPrepend{}, err
	}
	if err := validateEnvName(KindEnvPrepend, name); err != nil {
		return EnvPrepend{}, err
	}
	if err := validateFragment(KindEnvPrepend, fragment, separator); err != nil {
		return EnvPrepend{}, err
	}
	return EnvPrepend{scope: scope, name: name, fragment: fragment, separator: separator}, nil
}

func (EnvPrepend) Kind() Kind          { return KindEnvPrepend }
func (a EnvPrepend) Target() string    { return a.name }
func (a EnvPrepend) Scope() Scope      { return a.scope }
func (a EnvPrepend) Name() string      { return a.name }
func (a EnvPrepend) Fragment() string  { return a.fragment }
func (a EnvPrepend) Separator() string { return a.separator }
func (EnvPrepend) isAction()           {}

// EnvRemove deletes an environment variable.
type EnvRemove struct {
	scope Scope
	name  string
}

// NewEnvRemove creates an EnvRemove action.
func NewEnvRemove(scope Scope, name string) (EnvRemove, error) {
	if err := validateScope(KindEnvRemove, scope); err != nil {
		return EnvRemove{}, err
	}
	if err := validateEnvName(KindEnvRemove, name); err != nil {
		return EnvRemove{}, err
	}
	return EnvRemove{scope: scope, name: name}, nil
}

func (EnvRemove) Kind() Kind       { return KindEnvRemove }
func (a EnvRemove) Target() string { return a.name }
func (a EnvRemove) Scope() Scope   { return a.scope }
func (a EnvRemove) Name() string   { return a.name }
func (EnvRemove) isAction()        {}

// EnvRestore writes back a value captured before installation.
type EnvRestore struct {
	scope    Scope
	name     string
	previous string
}

// NewEnvRestore creates an EnvRestore action.
func NewEnvRestore(scope Scope, name, previous string) (EnvRestore, error) {
	if err := validateScope(KindEnvRestore, scope); err != nil {
		return EnvRestore{}, err
	}
	if err := validateEnvName(KindEnvRestore, name); err != nil {
		return EnvRestore{}, err
	}
	if err := requireNoNUL(KindEnvRestore, "previous", previous); err != nil {
		return EnvRestore{}, err
	}
	return EnvRestore{scope: scope, name: name, previous: previous}, nil
}

func (EnvRestore) Kind() Kind         { return KindEnvRestore }
func (a EnvRestore) Target() string   { return a.name }
func (a EnvRestore) Scope() Scope     { return a.scope }
func (a EnvRestore) Name() string     { return a.name }
func (a EnvRestore) Previous() string { return a.previous }
func (EnvRestore) isAction()          {}

// EnvRemoveFragment removes one occurrence of Fragment and one adjacent
// separator from a list variable. From selects which occurrence: the last
// one (undoing an append) or the first one (undoing a prepend).
type EnvRemoveFragment struct {
	scope     Scope
	name      string
	fragment  string
	separator string
	from      Position
}

// NewEnvRemoveFragment creates an EnvRemoveFragment action.
func NewEnvRemoveFragment(scope Scope, name, fragment, separator string, from Position) (EnvRemoveFragment, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	if err := validateScope(KindEnvRemoveFragment, scope); err != nil {
		return EnvRemoveFragment{}, err
	}
	if err := validateEnvName(KindEnvRemoveFragment, name); err != nil {
		return EnvRemoveFragment{}, err
	}
	if err := validateFragment(KindEnvRemoveFragment, fragment, separator); err != nil {
		return EnvRemoveFragment{}, err
	}
	if from != PositionStart && from != PositionEnd {
		return EnvRemoveFragment{}, invalid(KindEnvRemoveFragment, "from", "start or end", string(from))
	}
	return EnvRemoveFragment{scope: scope, name: name, fragment: fragment, separator: separator, from: from}, nil
}

func (EnvRemoveFragment) Kind() Kind          { return KindEnvRemoveFragment }
func (a EnvRemoveFragment) Target() string    { return a.name }
func (a EnvRemoveFragment) Scope() Scope      { return a.scope }
func (a EnvRemoveFragment) Name() string      { return a.name }
func (a EnvRemoveFragment) Fragment() string  { return a.fragment }
func (a EnvRemoveFragment) Separator() string { return a.separator }
func (a EnvRemoveFragment) From() Position    { return a.from }
func (EnvRemoveFragment) isAction()           {}
