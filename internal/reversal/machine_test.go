package reversal

import (
	"fmt"
	"maps"
	"strings"

	"github.com/terassyi/nsid/internal/action"
	"github.com/terassyi/nsid/internal/envlist"
)

// machine is a minimal model of the target machine that actions can be
// applied to. Paths and names are folded to lower case.
type machine struct {
	files  map[string]bool
	dirs   map[string]bool
	keys   map[string]bool
	values map[string]RegistryValue
	env    map[string]string
	// missed counts fragment removals that found nothing to remove.
	missed int
}

func newMachine() *machine {
	return &machine{
		files:  map[string]bool{},
		dirs:   map[string]bool{},
		keys:   map[string]bool{},
		values: map[string]RegistryValue{},
		env:    map[string]string{},
	}
}

func (m *machine) clone() *machine {
	return &machine{
		files:  maps.Clone(m.files),
		dirs:   maps.Clone(m.dirs),
		keys:   maps.Clone(m.keys),
		values: maps.Clone(m.values),
		env:    maps.Clone(m.env),
	}
}

func (m *machine) equal(o *machine) bool {
	return maps.Equal(m.files, o.files) &&
		maps.Equal(m.dirs, o.dirs) &&
		maps.Equal(m.keys, o.keys) &&
		maps.Equal(m.values, o.values) &&
		maps.Equal(m.env, o.env)
}

func (m *machine) String() string {
	return fmt.Sprintf("files=%v dirs=%v keys=%v values=%v env=%v", m.files, m.dirs, m.keys, m.values, m.env)
}

func regKey(root action.Root, key string) string {
	return foldKey(root, key)
}

func regValue(root action.Root, key, name string) string {
	return foldValue(root, key, name)
}

func envName(scope action.Scope, name string) string {
	return foldEnv(scope, name)
}

// putKey marks a key and all of its parents as existing.
func (m *machine) putKey(root action.Root, key string) {
	for {
		m.keys[regKey(root, key)] = true
		i := strings.LastIndex(key, `\`)
		if i < 0 {
			return
		}
		key = key[:i]
	}
}

func (m *machine) keyEmpty(k string) bool {
	for v := range m.values {
		if strings.HasPrefix(v, k+"\x00") {
			return false
		}
	}
	for sub, ok := range m.keys {
		if ok && strings.HasPrefix(sub, k+`\`) {
			return false
		}
	}
	return true
}

func (m *machine) removeKeyTree(k string) {
	for sub := range m.keys {
		if sub == k || strings.HasPrefix(sub, k+`\`) {
			delete(m.keys, sub)
		}
	}
	for v := range m.values {
		if strings.HasPrefix(v, k+"\x00") || strings.HasPrefix(v, k+`\`) {
			delete(m.values, v)
		}
	}
}

func (m *machine) dirEmpty(p string) bool {
	for f := range m.files {
		if strings.HasPrefix(f, p+`\`) {
			return false
		}
	}
	for d := range m.dirs {
		if strings.HasPrefix(d, p+`\`) {
			return false
		}
	}
	return true
}

func (m *machine) apply(a action.Action) {
	switch a := a.(type) {
	case action.CopyFile:
		m.files[strings.ToLower(a.Destination())] = true
	case action.CreateDir:
		m.dirs[strings.ToLower(a.Path())] = true
	case action.CreateShortcut:
		m.files[strings.ToLower(a.Path())] = true
	case action.ExecPostInstall:
	case action.DeleteFile:
		delete(m.files, strings.ToLower(a.Path()))
	case action.DeleteShortcut:
		delete(m.files, strings.ToLower(a.Path()))
	case action.RemoveDir:
		p := strings.ToLower(a.Path())
		if m.dirEmpty(p) {
			delete(m.dirs, p)
		}
	case action.RegistryWrite:
		m.putKey(a.Root(), a.Key())
		m.values[regValue(a.Root(), a.Key(), a.ValueName())] = RegistryValue{Type: a.ValueType(), Data: a.Data()}
	case action.RegistryDeleteValue:
		delete(m.values, regValue(a.Root(), a.Key(), a.ValueName()))
	case action.RegistryDeleteKey:
		for _, name := range a.Values() {
			delete(m.values, regValue(a.Root(), a.Key(), name))
		}
		k := regKey(a.Root(), a.Key())
		if !a.IfEmpty() || m.keyEmpty(k) {
			m.removeKeyTree(k)
		}
	case action.EnvSet:
		m.env[envName(a.Scope(), a.Name())] = a.Value()
	case action.EnvRestore:
		m.env[envName(a.Scope(), a.Name())] = a.Previous()
	case action.EnvRemove:
		delete(m.env, envName(a.Scope(), a.Name()))
	case action.EnvAppend:
		n := envName(a.Scope(), a.Name())
		m.env[n] = envlist.Append(m.env[n], a.Fragment(), a.Separator())
	case action.EnvPrepend:
		n := envName(a.Scope(), a.Name())
		m.env[n] = envlist.Prepend(m.env[n], a.Fragment(), a.Separator())
	case action.EnvRemoveFragment:
		n := envName(a.Scope(), a.Name())
		cur, ok := m.env[n]
		if !ok {
			m.missed++
			return
		}
		var out string
		var found bool
		if a.From() == action.PositionStart {
			out, found = envlist.RemoveFirst(cur, a.Fragment(), a.Separator())
		} else {
			out, found = envlist.RemoveLast(cur, a.Fragment(), a.Separator())
		}
		if !found {
			m.missed++
			return
		}
		if out == "" {
			delete(m.env, n)
			return
		}
		m.env[n] = out
	default:
		panic(fmt.Sprintf("unhandled action %T", a))
	}
}

func (m *machine) run(seq action.Sequence) {
	for _, a := range seq.All() {
		m.apply(a)
	}
}
