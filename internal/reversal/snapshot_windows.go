//go:build windows

package reversal

import (
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/terassyi/nsid/internal/action"
	"golang.org/x/sys/windows/registry"
)

const systemEnvironmentKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

// LiveSnapshot reads the registry and environment of the machine it runs
// on. It is meant for planning on the target machine itself.
type LiveSnapshot struct {
	// AllUsers resolves SHCTX to HKLM instead of HKCU.
	AllUsers bool
	// View selects registry.WOW64_64KEY or registry.WOW64_32KEY; zero
	// uses the process default.
	View uint32
}

// NewLiveSnapshot creates a LiveSnapshot.
func NewLiveSnapshot(allUsers bool) (Snapshot, error) {
	return &LiveSnapshot{AllUsers: allUsers, View: registry.WOW64_64KEY}, nil
}

func (s *LiveSnapshot) rootKey(root action.Root) (registry.Key, bool) {
	switch root {
	case action.RootHKLM:
		return registry.LOCAL_MACHINE, true
	case action.RootHKCU:
		return registry.CURRENT_USER, true
	case action.RootHKCR:
		return registry.CLASSES_ROOT, true
	case action.RootHKU:
		return registry.USERS, true
	case action.RootHKCC:
		return registry.CURRENT_CONFIG, true
	case action.RootSHCTX:
		if s.AllUsers {
			return registry.LOCAL_MACHINE, true
		}
		return registry.CURRENT_USER, true
	default:
		return 0, false
	}
}

func (s *LiveSnapshot) open(root action.Root, key string) (registry.Key, Presence) {
	base, ok := s.rootKey(root)
	if !ok {
		return 0, Unknown
	}
	k, err := registry.OpenKey(base, key, registry.QUERY_VALUE|s.View)
	if errors.Is(err, registry.ErrNotExist) {
		return 0, Absent
	}
	if err != nil {
		return 0, Unknown
	}
	return k, Present
}

func (s *LiveSnapshot) Key(root action.Root, key string) Presence {
	k, p := s.open(root, key)
	if p == Present {
		k.Close()
	}
	return p
}

func (s *LiveSnapshot) Value(root action.Root, key, name string) (RegistryValue, Presence) {
	k, p := s.open(root, key)
	if p != Present {
		return RegistryValue{}, p
	}
	defer k.Close()
	return readValue(k, name)
}

func readValue(k registry.Key, name string) (RegistryValue, Presence) {
	_, typ, err := k.GetValue(name, nil)
	if errors.Is(err, registry.ErrNotExist) {
		return RegistryValue{}, Absent
	}
	if err != nil {
		return RegistryValue{}, Unknown
	}
	switch typ {
	case registry.SZ:
		v, _, err := k.GetStringValue(name)
		if err != nil {
			return RegistryValue{}, Unknown
		}
		return RegistryValue{Type: action.ValueString, Data: v}, Present
	case registry.EXPAND_SZ:
		v, _, err := k.GetStringValue(name)
		if err != nil {
			return RegistryValue{}, Unknown
		}
		return RegistryValue{Type: action.ValueExpandString, Data: v}, Present
	case registry.DWORD:
		v, _, err := k.GetIntegerValue(name)
		if err != nil {
			return RegistryValue{}, Unknown
		}
		return RegistryValue{Type: action.ValueDWORD, Data: strconv.FormatUint(v, 10)}, Present
	case registry.BINARY:
		v, _, err := k.GetBinaryValue(name)
		if err != nil {
			return RegistryValue{}, Unknown
		}
		return RegistryValue{Type: action.ValueBinary, Data: strings.ToUpper(hex.EncodeToString(v))}, Present
	default:
		// Types that cannot be written back are reported as unknown.
		return RegistryValue{}, Unknown
	}
}

func (s *LiveSnapshot) Env(scope action.Scope, name string) (string, Presence) {
	switch scope {
	case action.ScopeProcess:
		v, ok := os.LookupEnv(name)
		if !ok {
			return "", Absent
		}
		return v, Present
	case action.ScopeUser:
		v, p := s.Value(action.RootHKCU, "Environment", name)
		return v.Data, p
	case action.ScopeSystem:
		v, p := s.Value(action.RootHKLM, systemEnvironmentKey, name)
		return v.Data, p
	default:
		return "", Unknown
	}
}
