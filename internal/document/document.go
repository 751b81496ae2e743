// Package document assembles complete NSIS installer and uninstaller
// scripts from a project specification.
//
// The install document carries the header, the installer functions and
// the Install section. The uninstall document carries the uninstaller
// functions and the Uninstall section, whose body is planned from the
// install sequence on every export. Both are rendered with one Emitter so
// they share an encoding and variable set.
package document

import (
	"log/slog"
	"strings"

	"github.com/terassyi/nsid/internal/action"
	nsiderr "github.com/terassyi/nsid/internal/errors"
	"github.com/terassyi/nsid/internal/project"
	"github.com/terassyi/nsid/internal/reversal"
	"github.com/terassyi/nsid/internal/script"
)

// GeneratorName appears in the banner of every document.
const GeneratorName = "nsid"

// Variables are the user variables declared in the header.
var Variables = []string{"NOICONS", "LOGFILE", "LOGHANDLE"}

// Documents is the result of one export.
type Documents struct {
	Install       string             `json:"install" yaml:"install"`
	Uninstall     string             `json:"uninstall" yaml:"uninstall"`
	NonReversible []reversal.Warning `json:"nonReversible,omitempty" yaml:"nonReversible,omitempty"`
	Encoding      script.Encoding    `json:"encoding" yaml:"encoding"`

	// Sequence and Plan are what the sections were rendered from.
	Sequence action.Sequence `json:"-" yaml:"-"`
	Plan     *reversal.Plan  `json:"-" yaml:"-"`
}

// Combined returns the single script makensis compiles: the install
// document followed by the uninstall document.
func (d *Documents) Combined() string {
	return d.Install + "\n" + d.Uninstall
}

// Option configures Assemble.
type Option func(*assembler)

// WithSnapshot replaces the snapshot declared in the project.
func WithSnapshot(s reversal.Snapshot) Option {
	return func(a *assembler) {
		a.snapshot = s
	}
}

// WithBaseDir makes recursive copies without a declared manifest list the
// files found under their source, resolved against dir.
func WithBaseDir(dir string) Option {
	return func(a *assembler) {
		a.baseDir = dir
	}
}

// WithForceKeyDelete makes the uninstaller delete registry keys created by
// the installer even when they still hold values.
func WithForceKeyDelete(force bool) Option {
	return func(a *assembler) {
		a.forceKeyDelete = force
	}
}

// WithEncoding overrides the encoding chosen in the project options.
func WithEncoding(enc script.Encoding) Option {
	return func(a *assembler) {
		a.encoding = enc
	}
}

// WithVersion sets the generator version printed in the banner.
func WithVersion(v string) Option {
	return func(a *assembler) {
		a.version = v
	}
}

// WithoutLog disables the per-action WriteLog calls.
func WithoutLog() Option {
	return func(a *assembler) {
		a.noLog = true
	}
}

// assembler holds the state of one Assemble call.
type assembler struct {
	spec           *project.Spec
	snapshot       reversal.Snapshot
	baseDir        string
	forceKeyDelete bool
	encoding       script.Encoding
	version        string
	noLog          bool

	emitter *script.Emitter
}

// Assemble renders the install and uninstall documents for spec. spec is
// not modified. Any error aborts the whole export.
func Assemble(spec *project.Spec, opts ...Option) (*Documents, error) {
	if r := spec.Validate(); !r.IsValid() {
		return nil, nsiderr.NewExportError(spec.Name, "", r.Err(spec.Name))
	}
	a := &assembler{spec: spec.Clone(), encoding: spec.Options.Encoding, version: "dev"}
	if spec.Snapshot != nil {
		a.snapshot = spec.Snapshot
	}
	for _, opt := range opts {
		opt(a)
	}
	enc, err := script.ParseEncoding(string(a.encoding))
	if err != nil {
		return nil, nsiderr.NewExportError(spec.Name, "", err)
	}
	a.emitter = script.NewEmitter(enc, script.Options{
		Log:       !a.noLog,
		Variables: Variables,
	})

	install, err := a.spec.InstallSequence()
	if err != nil {
		return nil, nsiderr.NewExportError(spec.Name, "install", err)
	}

	plan, err := a.planner().Plan(install)
	if err != nil {
		return nil, nsiderr.NewExportError(spec.Name, "uninstall", err)
	}

	installDoc, err := a.installDocument(install)
	if err != nil {
		return nil, nsiderr.NewExportError(spec.Name, "install", err)
	}
	uninstallDoc, err := a.uninstallDocument(plan.Actions)
	if err != nil {
		return nil, nsiderr.NewExportError(spec.Name, "uninstall", err)
	}

	slog.Debug("assembled documents",
		"project", spec.Name,
		"encoding", enc,
		"install_actions", install.Len(),
		"uninstall_actions", plan.Actions.Len(),
		"non_reversible", len(plan.NonReversible))

	return &Documents{
		Install:       installDoc,
		Uninstall:     uninstallDoc,
		NonReversible: plan.NonReversible,
		Encoding:      enc,
		Sequence:      install,
		Plan:          plan,
	}, nil
}

func (a *assembler) planner() *reversal.Planner {
	opts := []reversal.Option{
		reversal.WithSnapshot(a.snapshot),
		reversal.WithForceKeyDelete(a.forceKeyDelete),
	}
	var m manifests
	if len(a.spec.Manifests) > 0 {
		m = append(m, reversal.StaticManifest(a.spec.Manifests))
	}
	if a.baseDir != "" {
		m = append(m, reversal.DirManifest{Base: a.baseDir})
	}
	if len(m) > 0 {
		opts = append(opts, reversal.WithManifest(m))
	}
	return reversal.NewPlanner(opts...)
}

// manifests tries each manifest in turn and returns the first answer.
type manifests []reversal.Manifest

func (ms manifests) Files(source string) ([]string, error) {
	var err error
	for _, m := range ms {
		var files []string
		if files, err = m.Files(source); err == nil {
			return files, nil
		}
	}
	return nil, err
}

// lines collects document text. The first error sticks and later writes
// are ignored, so callers check once at the end.
type lines struct {
	b   strings.Builder
	err error
}

func (l *lines) add(ss ...string) {
	if l.err != nil {
		return
	}
	for _, s := range ss {
		l.b.WriteString(s)
		l.b.WriteString("\n")
	}
}

func (l *lines) raw(s string) {
	if l.err != nil {
		return
	}
	l.b.WriteString(s)
}

func (l *lines) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func (l *lines) String() (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.b.String(), nil
}

const rule = ";============================================================================="

// quote checks and quotes a project field.
func (a *assembler) quote(l *lines, field, s string) string {
	q, err := a.emitter.Quote(field, s)
	if err != nil {
		l.fail(err)
	}
	return q
}

// shellContext is the SetShellVarContext argument for the install scope.
func (a *assembler) shellContext() string {
	if a.spec.PerUser() {
		return "current"
	}
	return "all"
}

// registrationKeys are the keys the installer owns outright.
func (a *assembler) registrationKeys() (app, uninstall string) {
	return `Software\${APPNAME}`, `Software\Microsoft\Windows\CurrentVersion\Uninstall\${APPNAME}`
}

// actionList collects fixed actions, keeping the first constructor error.
type actionList struct {
	actions []action.Action
	err     error
}

func (l *actionList) add(a action.Action, err error) {
	if err != nil {
		if l.err == nil {
			l.err = err
		}
		return
	}
	l.actions = append(l.actions, a)
}

func (l *actionList) sequence() (action.Sequence, error) {
	if l.err != nil {
		return action.Sequence{}, l.err
	}
	return action.NewSequence(l.actions...), nil
}
