package script

import (
	"fmt"

	"github.com/terassyi/nsid/internal/action"
)

const (
	userEnvironmentKey   = `Environment`
	systemEnvironmentKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
)

// envRegistry returns where a persistent environment scope is stored.
// The process scope has no registry location.
func envRegistry(scope action.Scope) (root, key string, ok bool) {
	switch scope {
	case action.ScopeUser:
		return "HKCU", userEnvironmentKey, true
	case action.ScopeSystem:
		return "HKLM", systemEnvironmentKey, true
	default:
		return "", "", false
	}
}

// envTarget renders reads and writes of one environment variable.
type envTarget struct {
	w    *writer
	root string
	key  string
	name string
}

func (w *writer) envTarget(scope action.Scope, name string) (*envTarget, error) {
	t := &envTarget{w: w}
	var err error
	if t.name, err = w.str("name", name); err != nil {
		return nil, err
	}
	if root, key, ok := envRegistry(scope); ok {
		w.env = true
		t.root = root
		t.key = w.q.Quote(key)
	}
	return t, nil
}

func (t *envTarget) persistent() bool {
	return t.root != ""
}

// read loads the current value into $0.
func (t *envTarget) read() {
	if t.persistent() {
		t.w.line("ReadRegStr $0 %s %s %s", t.root, t.key, t.name)
		return
	}
	t.w.line("ReadEnvStr $0 %s", t.name)
}

// write stores the quoted value.
func (t *envTarget) write(value string) {
	if t.persistent() {
		t.w.line("WriteRegExpandStr %s %s %s %s", t.root, t.key, t.name, value)
		return
	}
	t.w.line("StrCpy $0 %s", value)
	t.w.line("StrCpy $1 %s", t.name)
	t.w.line("System::Call 'Kernel32::SetEnvironmentVariable(t r1, t r0) i'")
}

func (t *envTarget) remove() {
	if t.persistent() {
		t.w.line("DeleteRegValue %s %s %s", t.root, t.key, t.name)
		return
	}
	t.w.line("StrCpy $1 %s", t.name)
	t.w.line("System::Call 'Kernel32::SetEnvironmentVariable(t r1, p 0) i'")
}

func (w *writer) envWrite(scope action.Scope, name, field, value string) error {
	t, err := w.envTarget(scope, name)
	if err != nil {
		return err
	}
	v, err := w.str(field, value)
	if err != nil {
		return err
	}
	t.write(v)
	return nil
}

func (w *writer) envRemove(scope action.Scope, name string) error {
	t, err := w.envTarget(scope, name)
	if err != nil {
		return err
	}
	t.remove()
	return nil
}

func (w *writer) envEdit(scope action.Scope, name, fragment, separator string, h helper) error {
	t, err := w.envTarget(scope, name)
	if err != nil {
		return err
	}
	q, err := w.strs("fragment", fragment, "separator", separator)
	if err != nil {
		return err
	}
	if !t.persistent() {
		t.read()
		w.line("Push $0")
		w.line("Push %s", q[0])
		w.line("Push %s", q[1])
		w.line("Call %s%s", w.section.prefix(), h)
		w.line("Pop $0")
		t.write(`"$0"`)
		return nil
	}

	warning, err := w.str("name", fmt.Sprintf("%s could not be read; left unchanged", name))
	if err != nil {
		return err
	}
	t.readGuarded(warning)
	w.line("Push $0")
	w.line("Push %s", q[0])
	w.line("Push %s", q[1])
	w.line("Call %s%s", w.section.prefix(), h)
	w.line("Pop $0")
	t.write(`"$0"`)
	w.line("%s_done:", w.label)
	return nil
}

// readGuarded loads the current value into $0. ReadRegStr fails both for
// a missing value and for one longer than NSIS_MAX_STRLEN; only the
// first may be treated as empty, otherwise writing back would truncate
// the variable. An unreadable value prints warning and jumps to
// <label>_done. Clobbers $1 and $2.
func (t *envTarget) readGuarded(warning string) {
	w := t.w
	w.line("ClearErrors")
	t.read()
	w.line("IfErrors 0 %s_read", w.label)
	w.line("  StrCpy $1 0")
	w.line("%s_scan:", w.label)
	w.line("  ClearErrors")
	w.line("  EnumRegValue $2 %s %s $1", t.root, t.key)
	w.line("  IfErrors %s_missing", w.label)
	w.line(`  StrCmp $2 "" %s_missing`, w.label)
	w.line("  StrCmp $2 %s %s_unreadable", t.name, w.label)
	w.line("  IntOp $1 $1 + 1")
	w.line("  Goto %s_scan", w.label)
	w.line("%s_unreadable:", w.label)
	w.line("  DetailPrint %s", warning)
	if w.opts.Log {
		w.line("  Push %s", warning)
		w.line("  Call %sWriteLog", w.section.prefix())
	}
	w.line("  Goto %s_done", w.label)
	w.line("%s_missing:", w.label)
	w.line(`  StrCpy $0 ""`)
	w.line("%s_read:", w.label)
}

// envRemoveFragment removes one occurrence of the fragment. When the
// fragment is no longer present the variable is left untouched and a
// warning is printed; when nothing remains the variable is deleted.
func (w *writer) envRemoveFragment(a action.EnvRemoveFragment) error {
	t, err := w.envTarget(a.Scope(), a.Name())
	if err != nil {
		return err
	}
	q, err := w.strs("fragment", a.Fragment(), "separator", a.Separator())
	if err != nil {
		return err
	}
	warning, err := w.str("fragment", fmt.Sprintf("%s not found in %s; left unchanged", a.Fragment(), a.Name()))
	if err != nil {
		return err
	}

	t.read()
	w.line("Push $0")
	w.line("Push %s", q[0])
	w.line("Push %s", q[1])
	w.line("Push %q", string(a.From()))
	w.line("Call %s%s", w.section.prefix(), helperRemove)
	w.line("Pop $1")
	w.line("Pop $0")
	w.line(`StrCmp $1 "1" %s_found`, w.label)
	w.line("  DetailPrint %s", warning)
	if w.opts.Log {
		w.line("  Push %s", warning)
		w.line("  Call %sWriteLog", w.section.prefix())
	}
	w.line("  Goto %s_done", w.label)
	w.line("%s_found:", w.label)
	w.line(`StrCmp $0 "" 0 %s_write`, w.label)
	t.indent(func() { t.remove() })
	w.line("  Goto %s_done", w.label)
	w.line("%s_write:", w.label)
	t.indent(func() { t.write(`"$0"`) })
	w.line("%s_done:", w.label)
	return nil
}

func (t *envTarget) indent(fn func()) {
	saved := t.w.indent
	t.w.indent += "  "
	defer func() { t.w.indent = saved }()
	fn()
}
