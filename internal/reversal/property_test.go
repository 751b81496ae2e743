// Package reversal property_test.go
//
// # Property-Based Tests for Reversal Planning
//
// These tests generate random install sequences against a random but fully
// captured machine state, apply the sequence and its planned reversal to
// an in-memory machine (machine_test.go), and check that the machine ends
// where it started.
//
// # Tested Invariants
//
//   - Round trip: forward then reverse restores files, directories,
//     registry keys and values, and environment variables
//   - Order: reverse actions are grouped by forward index, last first
//   - Fragment removal: appending or prepending then removing restores
//     the value exactly; removing an absent fragment changes nothing
//   - Unknown state: with no snapshot, no key that existed is deleted
package reversal

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terassyi/nsid/internal/action"
	"pgregory.net/rapid"
)

// =============================================================================
// Generators
// =============================================================================

var (
	keyPool  = []string{`Software\Vendor`, `Software\Vendor\App`, `Software\Other`}
	namePool = []string{"A", "B", ""}
	envPool  = []string{"PATH", "APP_HOME"}
	fragPool = []string{`$INSTDIR`, `$INSTDIR\bin`, `C:\tools`, `x`}
)

// listGenerator generates a non-empty list value built from the fragment
// pool and a few extra elements.
func listGenerator() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		elems := rapid.SliceOfN(rapid.SampledFrom(append([]string{`C:\Windows`, "y"}, fragPool...)), 1, 4).Draw(t, "elems")
		return strings.Join(elems, ";")
	})
}

// preState generates a machine and a snapshot that fully describes it.
func preState(t *rapid.T) (*machine, *StaticSnapshot) {
	m := newMachine()
	snap := &StaticSnapshot{
		Keys:   map[string]bool{`HKCU\Software`: true},
		Values: map[string]map[string]RegistryValue{`HKCU\Software`: {}},
		Vars:   map[string]*string{},
	}
	m.putKey(action.RootHKCU, "Software")

	for _, key := range keyPool {
		if !rapid.Bool().Draw(t, "exists "+key) {
			continue
		}
		m.putKey(action.RootHKCU, key)
	}
	// Parents of existing keys exist too.
	for _, key := range keyPool {
		exists := m.keys[regKey(action.RootHKCU, key)]
		snap.Keys[KeyPath(action.RootHKCU, key)] = exists
		if !exists {
			continue
		}
		values := map[string]RegistryValue{}
		for _, name := range namePool {
			if rapid.Bool().Draw(t, "value "+key+"/"+name) {
				v := RegistryValue{Type: action.ValueString, Data: rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "data")}
				values[name] = v
				m.values[regValue(action.RootHKCU, key, name)] = v
			}
		}
		snap.Values[KeyPath(action.RootHKCU, key)] = values
	}

	for _, name := range envPool {
		if rapid.Bool().Draw(t, "env "+name) {
			v := listGenerator().Draw(t, "env value")
			m.env[envName(action.ScopeUser, name)] = v
			snap.Vars[EnvPath(action.ScopeUser, name)] = &v
		} else {
			snap.Vars[EnvPath(action.ScopeUser, name)] = nil
		}
	}
	return m, snap
}

// forwardGenerator generates install sequences whose effects are all
// reversible given a full snapshot.
func forwardGenerator(t *rapid.T) action.Sequence {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	var actions []action.Action
	files, dirs := 0, 0
	for range n {
		var a action.Action
		var err error
		switch rapid.IntRange(0, 8).Draw(t, "kind") {
		case 0:
			files++
			a, err = action.NewCopyFile(fmt.Sprintf("f%d.txt", files), fmt.Sprintf(`$INSTDIR\f%d.txt`, files), false)
		case 1:
			dirs++
			a, err = action.NewCreateDir(fmt.Sprintf(`$INSTDIR\d%d`, dirs))
		case 2:
			files++
			a, err = action.NewCreateShortcut(fmt.Sprintf(`$SMPROGRAMS\s%d.lnk`, files), `$INSTDIR\app.exe`, "", "")
		case 3:
			a, err = action.NewRegistryWrite(action.RootHKCU,
				rapid.SampledFrom(keyPool).Draw(t, "key"),
				rapid.SampledFrom(namePool).Draw(t, "name"),
				action.ValueString,
				rapid.StringMatching(`[a-z0-9]{0,4}`).Draw(t, "data"))
		case 4:
			a, err = action.NewRegistryDeleteValue(action.RootHKCU,
				rapid.SampledFrom(keyPool).Draw(t, "key"),
				rapid.SampledFrom(namePool).Draw(t, "name"))
		case 5:
			a, err = action.NewEnvSet(action.ScopeUser, rapid.SampledFrom(envPool).Draw(t, "env"), listGenerator().Draw(t, "value"))
		case 6:
			a, err = action.NewEnvAppend(action.ScopeUser, rapid.SampledFrom(envPool).Draw(t, "env"), rapid.SampledFrom(fragPool).Draw(t, "fragment"), ";")
		case 7:
			a, err = action.NewEnvPrepend(action.ScopeUser, rapid.SampledFrom(envPool).Draw(t, "env"), rapid.SampledFrom(fragPool).Draw(t, "fragment"), ";")
		case 8:
			a, err = action.NewEnvRemove(action.ScopeUser, rapid.SampledFrom(envPool).Draw(t, "env"))
		}
		if err != nil {
			t.Fatalf("generator built an invalid action: %v", err)
		}
		actions = append(actions, a)
	}
	return action.NewSequence(actions...)
}

// =============================================================================
// Property Tests
// =============================================================================

func TestProperty_RoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		before, snap := preState(t)
		seq := forwardGenerator(t)

		plan, err := NewPlanner(WithSnapshot(snap)).Plan(seq)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if len(plan.NonReversible) != 0 {
			t.Fatalf("unexpected non-reversible actions: %v", plan.NonReversible)
		}

		m := before.clone()
		m.run(seq)
		m.run(plan.Actions)

		if !m.equal(before) {
			t.Fatalf("state not restored\nbefore: %s\nafter:  %s", before, m)
		}
		if m.missed != 0 {
			t.Fatalf("%d fragment removals found nothing", m.missed)
		}
	})
}

func TestProperty_ReverseOrder(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		_, snap := preState(t)
		seq := forwardGenerator(t)

		plan, err := NewPlanner(WithSnapshot(snap)).Plan(seq)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if len(plan.Origins) != plan.Actions.Len() {
			t.Fatalf("origins %d != actions %d", len(plan.Origins), plan.Actions.Len())
		}
		if !slices.IsSortedFunc(plan.Origins, func(a, b int) int { return b - a }) {
			t.Fatalf("origins not in reverse order: %v", plan.Origins)
		}
		for i, origin := range plan.Origins {
			if origin < 0 || origin >= seq.Len() {
				t.Fatalf("origin %d of action %d out of range", origin, i)
			}
		}
	})
}

func TestProperty_FragmentRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		value := rapid.OneOf(rapid.Just(""), listGenerator()).Draw(t, "value")
		fragment := rapid.SampledFrom(fragPool).Draw(t, "fragment")
		prepend := rapid.Bool().Draw(t, "prepend")

		var forward action.Action
		var err error
		if prepend {
			forward, err = action.NewEnvPrepend(action.ScopeUser, "PATH", fragment, ";")
		} else {
			forward, err = action.NewEnvAppend(action.ScopeUser, "PATH", fragment, ";")
		}
		if err != nil {
			t.Fatal(err)
		}

		m := newMachine()
		if value != "" {
			m.env[envName(action.ScopeUser, "PATH")] = value
		}
		before := m.clone()

		plan, err := PlanReversal(action.NewSequence(forward))
		if err != nil {
			t.Fatal(err)
		}
		m.apply(forward)
		m.run(plan.Actions)
		if !m.equal(before) {
			t.Fatalf("value %q not restored: %s", value, m)
		}
	})
}

func TestProperty_FragmentAbsentIsNoop(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		value := listGenerator().Draw(t, "value")
		fragment := rapid.StringMatching(`Z[a-z]{0,3}`).Draw(t, "fragment")
		rm, err := action.NewEnvRemoveFragment(action.ScopeUser, "PATH", fragment, ";", action.PositionEnd)
		if err != nil {
			t.Fatal(err)
		}

		m := newMachine()
		m.env[envName(action.ScopeUser, "PATH")] = value
		m.apply(rm)

		if got := m.env[envName(action.ScopeUser, "PATH")]; got != value {
			t.Fatalf("value changed from %q to %q", value, got)
		}
		if m.missed != 1 {
			t.Fatalf("missing fragment was not reported")
		}
	})
}

func TestProperty_UnknownStateKeepsExistingKeys(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		before, _ := preState(t)
		seq := forwardGenerator(t)

		plan, err := PlanReversal(seq)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if slices.Contains(plan.Actions.Kinds(), action.KindRegistryDeleteKey) {
			t.Fatalf("key deleted without a snapshot")
		}

		m := before.clone()
		m.run(seq)
		m.run(plan.Actions)
		for k := range before.keys {
			if !m.keys[k] {
				t.Fatalf("existing key %s removed", k)
			}
		}
	})
}

// =============================================================================
// Known Structure Tests
// =============================================================================

func TestRoundTrip_AppendToExistingPath(t *testing.T) {
	t.Parallel()

	path := `C:\Windows;C:\tools`
	m := newMachine()
	m.env[envName(action.ScopeUser, "PATH")] = path
	before := m.clone()

	seq := action.NewSequence(
		must(action.NewEnvAppend(action.ScopeUser, "PATH", `C:\tools`, ";")),
		must(action.NewEnvPrepend(action.ScopeUser, "PATH", `C:\tools`, ";")),
	)
	plan, err := NewPlanner(WithSnapshot(&StaticSnapshot{Vars: map[string]*string{"user/PATH": &path}})).Plan(seq)
	require.NoError(t, err)

	m.run(seq)
	assert.Equal(t, `C:\tools;C:\Windows;C:\tools;C:\tools`, m.env[envName(action.ScopeUser, "PATH")])
	m.run(plan.Actions)
	assert.True(t, m.equal(before), m.String())
}
