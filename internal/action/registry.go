package action

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Root is a registry root key as spelled in NSIS.
type Root string

const (
	RootHKLM  Root = "HKLM"
	RootHKCU  Root = "HKCU"
	RootHKCR  Root = "HKCR"
	RootHKU   Root = "HKU"
	RootHKCC  Root = "HKCC"
	RootSHCTX Root = "SHCTX" // HKLM or HKCU depending on SetShellVarContext
)

var rootAliases = map[string]Root{
	"HKLM":                RootHKLM,
	"HKEY_LOCAL_MACHINE":  RootHKLM,
	"HKCU":                RootHKCU,
	"HKEY_CURRENT_USER":   RootHKCU,
	"HKCR":                RootHKCR,
	"HKEY_CLASSES_ROOT":   RootHKCR,
	"HKU":                 RootHKU,
	"HKEY_USERS":          RootHKU,
	"HKCC":                RootHKCC,
	"HKEY_CURRENT_CONFIG": RootHKCC,
	"SHCTX":               RootSHCTX,
}

// ParseRoot parses a registry root in short or long form.
func ParseRoot(s string) (Root, error) {
	r, ok := rootAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown registry root %q", s)
	}
	return r, nil
}

// ValueType is a registry value type.
type ValueType string

const (
	ValueString       ValueType = "string"
	ValueExpandString ValueType = "expandstring"
	ValueDWORD        ValueType = "dword"
	ValueBinary       ValueType = "binary"
)

// ParseValueType parses a value type. An empty string yields ValueString.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "str", "reg_sz":
		return ValueString, nil
	case "expandstring", "expandstr", "expand", "reg_expand_sz":
		return ValueExpandString, nil
	case "dword", "reg_dword":
		return ValueDWORD, nil
	case "binary", "bin", "reg_binary":
		return ValueBinary, nil
	default:
		return "", fmt.Errorf("unknown registry value type %q", s)
	}
}

// normalizeKey trims surrounding backslashes and rejects empty segments.
func normalizeKey(kind Kind, key string) (string, error) {
	k := strings.Trim(strings.TrimSpace(key), `\`)
	if k == "" {
		return "", invalid(kind, "key", "non-empty subkey", key)
	}
	if strings.Contains(k, `\\`) {
		return "", invalid(kind, "key", "subkey without empty segments", key)
	}
	if err := requireNoNUL(kind, "key", k); err != nil {
		return "", err
	}
	return k, nil
}

func validateRoot(kind Kind, root Root) error {
	if _, err := ParseRoot(string(root)); err != nil {
		return invalid(kind, "root", "one of HKLM, HKCU, HKCR, HKU, HKCC, SHCTX", string(root))
	}
	return nil
}

// validateData checks that data is representable as vt.
func validateData(kind Kind, vt ValueType, data string) error {
	switch vt {
	case ValueString, ValueExpandString:
		return requireNoNUL(kind, "data", data)
	case ValueDWORD:
		if isRuntimeReference(data) {
			return nil
		}
		if _, err := ParseDWORD(data); err != nil {
			return invalid(kind, "data", "DWORD (uint32, decimal or 0x hex)", data)
		}
		return nil
	case ValueBinary:
		if len(data) == 0 || len(data)%2 != 0 {
			return invalid(kind, "data", "even-length hex string", data)
		}
		if _, err := hex.DecodeString(data); err != nil {
			return invalid(kind, "data", "even-length hex string", data)
		}
		return nil
	default:
		return invalid(kind, "valueType", "string, expandstring, dword or binary", string(vt))
	}
}

// ParseDWORD parses a decimal or 0x-prefixed hexadecimal uint32.
func ParseDWORD(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s = rest
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// isRuntimeReference reports whether s is a single NSIS variable such as
// $0 or $R1, whose value is only known when the installer runs.
func isRuntimeReference(s string) bool {
	if len(s) < 2 || s[0] != '$' {
		return false
	}
	name := s[1:]
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return true
	}
	return len(name) == 2 && name[0] == 'R' && name[1] >= '0' && name[1] <= '9'
}

// RegistryWrite writes one registry value.
type RegistryWrite struct {
	root      Root
	key       string
	valueName string
	valueType ValueType
	data      string
}

// NewRegistryWrite creates a RegistryWrite action. An empty valueName
// addresses the key's default value.
func NewRegistryWrite(root Root, key, valueName string, valueType ValueType, data string) (RegistryWrite, error) {
	if err := validateRoot(KindRegistryWrite, root); err != nil {
		return RegistryWrite{}, err
	}
	k, err := normalizeKey(KindRegistryWrite, key)
	if err != nil {
		return RegistryWrite{}, err
	}
	if err := requireNoNUL(KindRegistryWrite, "valueName", valueName); err != nil {
		return RegistryWrite{}, err
	}
	if err := validateData(KindRegistryWrite, valueType, data); err != nil {
		return RegistryWrite{}, err
	}
	if valueType == ValueBinary {
		data = strings.ToUpper(data)
	}
	return RegistryWrite{root: root, key: k, valueName: valueName, valueType: valueType, data: data}, nil
}

func (RegistryWrite) Kind() Kind             { return KindRegistryWrite }
func (a RegistryWrite) Target() string       { return string(a.root) + `\` + a.key }
func (a RegistryWrite) Root() Root           { return a.root }
func (a RegistryWrite) Key() string          { return a.key }
func (a RegistryWrite) ValueName() string    { return a.valueName }
func (a RegistryWrite) ValueType() ValueType { return a.valueType }
func (a RegistryWrite) Data() string         { return a.data }
func (RegistryWrite) isAction()              {}

// Bytes returns the decoded payload of a binary value.
func (a RegistryWrite) Bytes() []byte {
	if a.valueType != ValueBinary {
		return []byte(a.data)
	}
	b, _ := hex.DecodeString(a.data)
	return b
}

// RegistryDeleteValue deletes one registry value, leaving the key.
type RegistryDeleteValue struct {
	root      Root
	key       string
	valueName string
}

// NewRegistryDeleteValue creates a RegistryDeleteValue action.
func NewRegistryDeleteValue(root Root, key, valueName string) (RegistryDeleteValue, error) {
	if err := validateRoot(KindRegistryDeleteValue, root); err != nil {
		return RegistryDeleteValue{}, err
	}
	k, err := normalizeKey(KindRegistryDeleteValue, key)
	if err != nil {
		return RegistryDeleteValue{}, err
	}
	return RegistryDeleteValue{root: root, key: k, valueName: valueName}, nil
}

func (RegistryDeleteValue) Kind() Kind          { return KindRegistryDeleteValue }
func (a RegistryDeleteValue) Target() string    { return string(a.root) + `\` + a.key }
func (a RegistryDeleteValue) Root() Root        { return a.root }
func (a RegistryDeleteValue) Key() string       { return a.key }
func (a RegistryDeleteValue) ValueName() string { return a.valueName }
func (RegistryDeleteValue) isAction()           {}

// RegistryDeleteKey deletes a registry key. Values lists the value names
// known to live under the key; they are deleted first. With IfEmpty the
// key itself is only removed when nothing else remains in it.
type RegistryDeleteKey struct {
	root    Root
	key     string
	values  []string
	ifEmpty bool
}

// NewRegistryDeleteKey creates a RegistryDeleteKey action.
func NewRegistryDeleteKey(root Root, key string, values []string, ifEmpty bool) (RegistryDeleteKey, error) {
	if err := validateRoot(KindRegistryDeleteKey, root); err != nil {
		return RegistryDeleteKey{}, err
	}
	k, err := normalizeKey(KindRegistryDeleteKey, key)
	if err != nil {
		return RegistryDeleteKey{}, err
	}
	return RegistryDeleteKey{root: root, key: k, values: append([]string(nil), values...), ifEmpty: ifEmpty}, nil
}

func (RegistryDeleteKey) Kind() Kind       { return KindRegistryDeleteKey }
func (a RegistryDeleteKey) Target() string { return string(a.root) + `\` + a.key }
func (a RegistryDeleteKey) Root() Root     { return a.root }
func (a RegistryDeleteKey) Key() string    { return a.key }
func (a RegistryDeleteKey) IfEmpty() bool  { return a.ifEmpty }
func (RegistryDeleteKey) isAction()        {}

// Values returns a copy of the recorded value names.
func (a RegistryDeleteKey) Values() []string {
	return append([]string(nil), a.values...)
}
