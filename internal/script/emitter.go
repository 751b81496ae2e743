// Package script renders action sequences as NSIS script text.
//
// The emitter is deterministic: identical inputs always produce identical
// output. Every literal is checked against the target encoding before it
// is written, and rendering stops at the first literal that cannot be
// represented.
package script

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/terassyi/nsid/internal/action"
)

// Section selects the installer or uninstaller half of a script. Functions
// called from the uninstall section carry the "un." prefix.
type Section string

const (
	SectionInstall   Section = "install"
	SectionUninstall Section = "uninstall"
)

func (s Section) prefix() string {
	if s == SectionUninstall {
		return "un."
	}
	return ""
}

// Options controls rendering.
type Options struct {
	// Log emits a WriteLog call before each action.
	Log bool
	// Variables lists user variables declared by the surrounding document
	// so they are recognised inside strings.
	Variables []string
	// Indent is prepended to every rendered line. Defaults to two spaces.
	Indent string
}

// Emitter renders action sequences.
type Emitter struct {
	enc  Encoding
	opts Options
	q    *quoter
}

// NewEmitter creates an Emitter for the given encoding.
func NewEmitter(enc Encoding, opts Options) *Emitter {
	if enc == "" {
		enc = UTF8
	}
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	return &Emitter{enc: enc, opts: opts, q: newQuoter(opts.Variables)}
}

// Encoding returns the emitter's encoding.
func (e *Emitter) Encoding() Encoding {
	return e.enc
}

// Render renders seq as the body of an install or uninstall section.
// After environment edits a single WM_SETTINGCHANGE broadcast is emitted,
// and after registry edits a single shell change notification.
func (e *Emitter) Render(section Section, seq action.Sequence) (string, error) {
	w := &writer{Emitter: e, section: section, indent: e.opts.Indent}
	for i, a := range seq.All() {
		w.field = fmt.Sprintf("actions[%d]", i)
		w.label = fmt.Sprintf("nsid_%s_%d", section, i)
		if err := w.action(a); err != nil {
			return "", err
		}
	}
	if w.registry {
		w.comment("Notify the shell about registry changes")
		w.line("System::Call 'shell32::SHChangeNotify(i 0x08000000, i 0x0000, p 0, p 0)'")
	}
	if w.env {
		w.comment("Notify running programs about environment changes")
		w.line(`System::Call 'User32::SendMessageTimeout(p 0xffff, i ${WM_SETTINGCHANGE}, p 0, t "Environment", i 0, i 5000, *p .r0)'`)
	}
	slog.Debug("rendered section", "section", section, "actions", seq.Len(), "lines", len(w.lines))
	return w.String(), nil
}

// RenderSection renders seq wrapped in a named Section block.
func (e *Emitter) RenderSection(name string, section Section, seq action.Sequence) (string, error) {
	if err := e.enc.Check("section", name); err != nil {
		return "", err
	}
	body, err := e.Render(section, seq)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Section %s\n", e.q.Quote(name))
	b.WriteString(body)
	b.WriteString("SectionEnd\n")
	return b.String(), nil
}

// Quote checks s against the encoding and returns it as an escaped,
// double-quoted NSIS string.
func (e *Emitter) Quote(field, s string) (string, error) {
	if err := e.enc.Check(field, s); err != nil {
		return "", err
	}
	return e.q.Quote(s), nil
}

// Render renders seq as an install section body.
func Render(seq action.Sequence, opts Options, enc Encoding) (string, error) {
	return NewEmitter(enc, opts).Render(SectionInstall, seq)
}

// writer accumulates the lines of one section.
type writer struct {
	*Emitter
	section Section
	indent  string
	lines   []string
	field   string
	label   string

	registry bool
	env      bool
}

func (w *writer) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}

func (w *writer) line(format string, args ...any) {
	w.lines = append(w.lines, w.indent+fmt.Sprintf(format, args...))
}

func (w *writer) comment(text string) {
	w.lines = append(w.lines, w.indent+"; "+text)
}

// str quotes a literal belonging to the named field of the current action.
func (w *writer) str(name, s string) (string, error) {
	return w.Quote(w.field+"."+name, s)
}

// strs quotes several literals, stopping at the first failure.
func (w *writer) strs(pairs ...string) ([]string, error) {
	out := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		q, err := w.str(pairs[i], pairs[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (w *writer) log(message string) error {
	if !w.opts.Log {
		return nil
	}
	q, err := w.str("log", message)
	if err != nil {
		return err
	}
	w.line("Push %s", q)
	w.line("Call %sWriteLog", w.section.prefix())
	return nil
}

// action renders a preceded by its log line. The body is rendered first
// so an encoding failure names the action field rather than the log text.
func (w *writer) action(a action.Action) error {
	start := len(w.lines)
	if err := w.body(a); err != nil {
		return err
	}
	body := slices.Clone(w.lines[start:])
	w.lines = w.lines[:start]
	if err := w.log(action.Describe(a)); err != nil {
		return err
	}
	w.lines = append(w.lines, body...)
	return nil
}

func (w *writer) body(a action.Action) error {
	switch a := a.(type) {
	case action.CopyFile:
		return w.copyFile(a)
	case action.CreateDir:
		return w.createDir(a)
	case action.CreateShortcut:
		return w.createShortcut(a)
	case action.ExecPostInstall:
		return w.exec(a)
	case action.DeleteFile:
		return w.deleteFile(a)
	case action.RemoveDir:
		return w.removeDir(a)
	case action.DeleteShortcut:
		return w.deleteShortcut(a)
	case action.RegistryWrite:
		return w.registryWrite(a)
	case action.RegistryDeleteValue:
		return w.registryDeleteValue(a)
	case action.RegistryDeleteKey:
		return w.registryDeleteKey(a)
	case action.EnvSet:
		return w.envWrite(a.Scope(), a.Name(), "value", a.Value())
	case action.EnvRestore:
		return w.envWrite(a.Scope(), a.Name(), "previous", a.Previous())
	case action.EnvRemove:
		return w.envRemove(a.Scope(), a.Name())
	case action.EnvAppend:
		return w.envEdit(a.Scope(), a.Name(), a.Fragment(), a.Separator(), helperAppend)
	case action.EnvPrepend:
		return w.envEdit(a.Scope(), a.Name(), a.Fragment(), a.Separator(), helperPrepend)
	case action.EnvRemoveFragment:
		return w.envRemoveFragment(a)
	default:
		return fmt.Errorf("%s: no rendering for action %T", w.field, a)
	}
}

// parent returns the directory part of a backslash-separated path.
func parent(p string) (string, bool) {
	i := strings.LastIndex(p, `\`)
	if i <= 0 {
		return "", false
	}
	return p[:i], true
}

func (w *writer) copyFile(a action.CopyFile) error {
	if a.Recursive() {
		q, err := w.strs("destination", a.Destination(), "source", strings.TrimRight(a.Source(), `\/`)+`\*.*`)
		if err != nil {
			return err
		}
		w.line("SetOutPath %s", q[0])
		w.line("File /r %s", q[1])
		return nil
	}
	if dir, ok := parent(a.Destination()); ok {
		q, err := w.str("destination", dir)
		if err != nil {
			return err
		}
		w.line("SetOutPath %s", q)
	}
	q, err := w.strs("destination", "/oname="+a.Destination(), "source", a.Source())
	if err != nil {
		return err
	}
	w.line("File %s %s", q[0], q[1])
	return nil
}

func (w *writer) createDir(a action.CreateDir) error {
	q, err := w.str("path", a.Path())
	if err != nil {
		return err
	}
	w.line("CreateDirectory %s", q)
	return nil
}

func (w *writer) createShortcut(a action.CreateShortcut) error {
	if dir, ok := parent(a.Path()); ok {
		q, err := w.str("path", dir)
		if err != nil {
			return err
		}
		w.line("CreateDirectory %s", q)
	}
	q, err := w.strs("path", a.Path(), "target", a.LinkTarget(), "arguments", a.Arguments(), "icon", a.Icon())
	if err != nil {
		return err
	}
	// Trailing empty parameters are omitted.
	args := q
	switch {
	case a.Icon() != "":
	case a.Arguments() != "":
		args = q[:3]
	default:
		args = q[:2]
	}
	w.line("CreateShortCut %s", strings.Join(args, " "))
	return nil
}

func (w *writer) exec(a action.ExecPostInstall) error {
	cmd := `"` + a.Command() + `"`
	if a.Arguments() != "" {
		cmd += " " + a.Arguments()
	}
	q, err := w.str("command", cmd)
	if err != nil {
		return err
	}
	if a.Wait() {
		w.line("ExecWait %s", q)
		return nil
	}
	w.line("Exec %s", q)
	return nil
}

func (w *writer) deleteFile(a action.DeleteFile) error {
	q, err := w.str("path", a.Path())
	if err != nil {
		return err
	}
	if a.Recursive() {
		w.line("RMDir /r %s", q)
		return nil
	}
	w.line("Delete %s", q)
	return nil
}

func (w *writer) removeDir(a action.RemoveDir) error {
	q, err := w.str("path", a.Path())
	if err != nil {
		return err
	}
	w.line("RMDir %s", q)
	return nil
}

func (w *writer) deleteShortcut(a action.DeleteShortcut) error {
	q, err := w.str("path", a.Path())
	if err != nil {
		return err
	}
	w.line("Delete %s", q)
	return nil
}

func (w *writer) registryWrite(a action.RegistryWrite) error {
	w.registry = true
	q, err := w.strs("key", a.Key(), "valueName", a.ValueName())
	if err != nil {
		return err
	}
	root := string(a.Root())
	switch a.ValueType() {
	case action.ValueString, action.ValueExpandString:
		data, err := w.str("data", a.Data())
		if err != nil {
			return err
		}
		cmd := "WriteRegStr"
		if a.ValueType() == action.ValueExpandString {
			cmd = "WriteRegExpandStr"
		}
		w.line("%s %s %s %s %s", cmd, root, q[0], q[1], data)
	case action.ValueDWORD:
		data := a.Data()
		if n, err := action.ParseDWORD(data); err == nil {
			data = strconv.FormatUint(uint64(n), 10)
		}
		w.line("WriteRegDWORD %s %s %s %s", root, q[0], q[1], data)
	case action.ValueBinary:
		w.line("WriteRegBin %s %s %s %s", root, q[0], q[1], a.Data())
	default:
		return fmt.Errorf("%s: unsupported registry value type %q", w.field, a.ValueType())
	}
	return nil
}

func (w *writer) registryDeleteValue(a action.RegistryDeleteValue) error {
	w.registry = true
	q, err := w.strs("key", a.Key(), "valueName", a.ValueName())
	if err != nil {
		return err
	}
	w.line("DeleteRegValue %s %s %s", a.Root(), q[0], q[1])
	return nil
}

func (w *writer) registryDeleteKey(a action.RegistryDeleteKey) error {
	w.registry = true
	key, err := w.str("key", a.Key())
	if err != nil {
		return err
	}
	for i, name := range a.Values() {
		v, err := w.str(fmt.Sprintf("values[%d]", i), name)
		if err != nil {
			return err
		}
		w.line("DeleteRegValue %s %s %s", a.Root(), key, v)
	}
	if a.IfEmpty() {
		w.line("DeleteRegKey /ifempty %s %s", a.Root(), key)
		return nil
	}
	w.line("DeleteRegKey %s %s", a.Root(), key)
	return nil
}
