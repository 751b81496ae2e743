package reversal

import (
	"strings"

	"github.com/terassyi/nsid/internal/action"
)

// run tracks the simulated machine state while a forward sequence is
// walked. Entries override the snapshot, so the second write to a value
// sees the first write instead of the pre-install state.
type run struct {
	*Planner

	keys   map[string]Presence
	values map[string]trackedValue
	env    map[string]trackedEnv
}

type trackedValue struct {
	value    RegistryValue
	presence Presence
}

type trackedEnv struct {
	value    string
	presence Presence
}

func newRun(p *Planner) *run {
	return &run{
		Planner: p,
		keys:    make(map[string]Presence),
		values:  make(map[string]trackedValue),
		env:     make(map[string]trackedEnv),
	}
}

func foldKey(root action.Root, key string) string {
	return strings.ToLower(KeyPath(root, key))
}

func foldValue(root action.Root, key, name string) string {
	return foldKey(root, key) + "\x00" + strings.ToLower(name)
}

func foldEnv(scope action.Scope, name string) string {
	return strings.ToLower(EnvPath(scope, name))
}

func (r *run) key(root action.Root, key string) Presence {
	if p, ok := r.keys[foldKey(root, key)]; ok {
		return p
	}
	return r.snapshot.Key(root, key)
}

func (r *run) value(root action.Root, key, name string) (RegistryValue, Presence) {
	if v, ok := r.values[foldValue(root, key, name)]; ok {
		return v.value, v.presence
	}
	// A key known to be missing has no values.
	if p, ok := r.keys[foldKey(root, key)]; ok && p == Absent {
		return RegistryValue{}, Absent
	}
	return r.snapshot.Value(root, key, name)
}

// absentAncestors returns the parents of key that did not exist, nearest
// first. The walk stops at the first parent that exists or is unknown.
func (r *run) absentAncestors(root action.Root, key string) []string {
	var out []string
	for {
		i := strings.LastIndex(key, `\`)
		if i < 0 {
			return out
		}
		key = key[:i]
		if r.key(root, key) != Absent {
			return out
		}
		out = append(out, key)
	}
}

func (r *run) writeValue(root action.Root, key, name string, v RegistryValue) {
	r.keys[foldKey(root, key)] = Present
	r.values[foldValue(root, key, name)] = trackedValue{value: v, presence: Present}
}

func (r *run) deleteValue(root action.Root, key, name string) {
	r.values[foldValue(root, key, name)] = trackedValue{presence: Absent}
}

func (r *run) deleteKey(root action.Root, key string) {
	prefix := foldKey(root, key)
	for k := range r.keys {
		if k == prefix || strings.HasPrefix(k, prefix+`\`) {
			r.keys[k] = Absent
		}
	}
	for k := range r.values {
		if strings.HasPrefix(k, prefix+"\x00") || strings.HasPrefix(k, prefix+`\`) {
			delete(r.values, k)
		}
	}
	r.keys[prefix] = Absent
}

func (r *run) envValue(scope action.Scope, name string) (string, Presence) {
	if v, ok := r.env[foldEnv(scope, name)]; ok {
		return v.value, v.presence
	}
	return r.snapshot.Env(scope, name)
}

func (r *run) setEnv(scope action.Scope, name, value string) {
	r.env[foldEnv(scope, name)] = trackedEnv{value: value, presence: Present}
}

func (r *run) removeEnv(scope action.Scope, name string) {
	r.env[foldEnv(scope, name)] = trackedEnv{presence: Absent}
}

// editEnv applies a list edit when the current value is known. An unknown
// value stays unknown.
func (r *run) editEnv(scope action.Scope, name string, edit func(string) string) {
	cur, p := r.envValue(scope, name)
	switch p {
	case Present:
		r.setEnv(scope, name, edit(cur))
	case Absent:
		r.setEnv(scope, name, edit(""))
	}
}
