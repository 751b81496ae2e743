package reversal

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/terassyi/nsid/internal/action"
	"github.com/terassyi/nsid/internal/envlist"
	nsiderr "github.com/terassyi/nsid/internal/errors"
)

// step is the reversal of one forward action: zero or more actions that
// run together, plus a reason when the effect cannot be fully undone.
type step struct {
	actions []action.Action
	reason  string
}

func undo(actions ...action.Action) step {
	return step{actions: actions}
}

func nonReversible(reason string, actions ...action.Action) step {
	return step{actions: actions, reason: reason}
}

type reverser func(r *run, a action.Action) (step, error)

// policies maps every forward kind to its reversal rule. Reverse-only
// kinds are deliberately missing.
var policies = map[action.Kind]reverser{
	action.KindCopyFile:            reverseCopyFile,
	action.KindCreateDir:           reverseCreateDir,
	action.KindCreateShortcut:      reverseCreateShortcut,
	action.KindRegistryWrite:       reverseRegistryWrite,
	action.KindRegistryDeleteValue: reverseRegistryDeleteValue,
	action.KindRegistryDeleteKey:   reverseRegistryDeleteKey,
	action.KindEnvSet:              reverseEnvSet,
	action.KindEnvAppend:           reverseEnvAppend,
	action.KindEnvPrepend:          reverseEnvPrepend,
	action.KindEnvRemove:           reverseEnvRemove,
	action.KindExecPostInstall:     reverseExec,
}

func invalidForward(a action.Action) error {
	err := nsiderr.NewInvalidActionError(string(a.Kind()), "kind", "forward action kind", string(a.Kind()))
	err.Base.Hint = fmt.Sprintf("%s is produced by the reversal planner and cannot appear in an install sequence", a.Kind())
	return err
}

func reverseCopyFile(r *run, a action.Action) (step, error) {
	c := a.(action.CopyFile)
	if !c.Recursive() {
		del, err := action.NewDeleteFile(c.Destination(), false)
		if err != nil {
			return step{}, err
		}
		return undo(del), nil
	}

	// The directory itself is only removed if it is empty, which never
	// destroys files the install did not put there.
	rmdir, err := action.NewRemoveDir(c.Destination())
	if err != nil {
		return step{}, err
	}
	if r.manifest == nil {
		return nonReversible("recursive copy without a manifest; only the empty destination directory is removed", rmdir), nil
	}
	files, err := r.manifest.Files(c.Source())
	if err != nil {
		return nonReversible(fmt.Sprintf("manifest unavailable (%v); only the empty destination directory is removed", err), rmdir), nil
	}

	var out []action.Action
	var dirs []string
	for _, f := range files {
		p := c.Destination() + `\` + strings.Trim(f, `\`)
		if strings.HasSuffix(f, `\`) {
			dirs = append(dirs, p)
			continue
		}
		del, err := action.NewDeleteFile(p, false)
		if err != nil {
			return step{}, err
		}
		out = append(out, del)
	}
	// Deepest directories first so parents are empty by the time they are
	// removed.
	slices.SortStableFunc(dirs, func(x, y string) int {
		return cmp.Or(
			cmp.Compare(strings.Count(y, `\`), strings.Count(x, `\`)),
			cmp.Compare(y, x),
		)
	})
	for _, d := range dirs {
		rm, err := action.NewRemoveDir(d)
		if err != nil {
			return step{}, err
		}
		out = append(out, rm)
	}
	return undo(append(out, rmdir)...), nil
}

func reverseCreateDir(_ *run, a action.Action) (step, error) {
	rm, err := action.NewRemoveDir(a.(action.CreateDir).Path())
	if err != nil {
		return step{}, err
	}
	return undo(rm), nil
}

func reverseCreateShortcut(_ *run, a action.Action) (step, error) {
	del, err := action.NewDeleteShortcut(a.(action.CreateShortcut).Path())
	if err != nil {
		return step{}, err
	}
	return undo(del), nil
}

func reverseExec(_ *run, _ action.Action) (step, error) {
	return nonReversible("effects of an executed program cannot be undone"), nil
}

func reverseRegistryWrite(r *run, a action.Action) (step, error) {
	w := a.(action.RegistryWrite)
	root, key, name := w.Root(), w.Key(), w.ValueName()

	keyPresence := r.key(root, key)
	prev, valuePresence := r.value(root, key, name)
	ancestors := r.absentAncestors(root, key)
	defer func() {
		r.writeValue(root, key, name, RegistryValue{Type: w.ValueType(), Data: w.Data()})
		for _, k := range ancestors {
			r.keys[foldKey(root, k)] = Present
		}
	}()

	switch {
	case keyPresence == Absent:
		// The install creates the key. Delete the value it wrote, then the
		// key and any parents it had to create, each only if empty.
		del, err := action.NewRegistryDeleteKey(root, key, []string{name}, !r.forceKeyDelete)
		if err != nil {
			return step{}, err
		}
		out := []action.Action{del}
		for _, k := range ancestors {
			parent, err := action.NewRegistryDeleteKey(root, k, nil, true)
			if err != nil {
				return step{}, err
			}
			out = append(out, parent)
		}
		return undo(out...), nil
	case valuePresence == Present:
		return restoreValue(root, key, name, prev, w.Target())
	default:
		del, err := action.NewRegistryDeleteValue(root, key, name)
		if err != nil {
			return step{}, err
		}
		return undo(del), nil
	}
}

func reverseRegistryDeleteValue(r *run, a action.Action) (step, error) {
	d := a.(action.RegistryDeleteValue)
	root, key, name := d.Root(), d.Key(), d.ValueName()
	prev, p := r.value(root, key, name)
	defer r.deleteValue(root, key, name)

	switch p {
	case Present:
		return restoreValue(root, key, name, prev, d.Target())
	case Absent:
		return undo(), nil
	default:
		return nonReversible("previous value was not captured"), nil
	}
}

// restoreValue writes prev back. WriteRegBin cannot write zero bytes, so an
// empty binary value is reported instead of restored.
func restoreValue(root action.Root, key, name string, prev RegistryValue, target string) (step, error) {
	if prev.Type == action.ValueBinary && prev.Data == "" {
		return nonReversible("previous value is an empty binary value"), nil
	}
	restore, err := action.NewRegistryWrite(root, key, name, prev.Type, prev.Data)
	if err != nil {
		return step{}, fmt.Errorf("previous value of %s: %w", target, err)
	}
	return undo(restore), nil
}

func reverseRegistryDeleteKey(r *run, a action.Action) (step, error) {
	d := a.(action.RegistryDeleteKey)
	p := r.key(d.Root(), d.Key())
	defer r.deleteKey(d.Root(), d.Key())

	if p == Absent {
		return undo(), nil
	}
	return nonReversible("deleted key contents cannot be restored"), nil
}

func reverseEnvSet(r *run, a action.Action) (step, error) {
	s := a.(action.EnvSet)
	prev, p := r.envValue(s.Scope(), s.Name())
	defer r.setEnv(s.Scope(), s.Name(), s.Value())

	if p == Present {
		restore, err := action.NewEnvRestore(s.Scope(), s.Name(), prev)
		if err != nil {
			return step{}, err
		}
		return undo(restore), nil
	}
	rm, err := action.NewEnvRemove(s.Scope(), s.Name())
	if err != nil {
		return step{}, err
	}
	return undo(rm), nil
}

func reverseEnvAppend(r *run, a action.Action) (step, error) {
	e := a.(action.EnvAppend)
	defer r.editEnv(e.Scope(), e.Name(), func(v string) string {
		return envlist.Append(v, e.Fragment(), e.Separator())
	})
	rm, err := action.NewEnvRemoveFragment(e.Scope(), e.Name(), e.Fragment(), e.Separator(), action.PositionEnd)
	if err != nil {
		return step{}, err
	}
	return undo(rm), nil
}

func reverseEnvPrepend(r *run, a action.Action) (step, error) {
	e := a.(action.EnvPrepend)
	defer r.editEnv(e.Scope(), e.Name(), func(v string) string {
		return envlist.Prepend(v, e.Fragment(), e.Separator())
	})
	rm, err := action.NewEnvRemoveFragment(e.Scope(), e.Name(), e.Fragment(), e.Separator(), action.PositionStart)
	if err != nil {
		return step{}, err
	}
	return undo(rm), nil
}

func reverseEnvRemove(r *run, a action.Action) (step, error) {
	e := a.(action.EnvRemove)
	prev, p := r.envValue(e.Scope(), e.Name())
	defer r.removeEnv(e.Scope(), e.Name())

	switch p {
	case Present:
		restore, err := action.NewEnvRestore(e.Scope(), e.Name(), prev)
		if err != nil {
			return step{}, err
		}
		return undo(restore), nil
	case Absent:
		return undo(), nil
	default:
		return nonReversible("previous value was not captured"), nil
	}
}
