// Package doctor checks that the machine is ready to export and compile
// installers.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/terassyi/nsid/cuemodule"
	"github.com/terassyi/nsid/internal/checksum"
	"github.com/terassyi/nsid/internal/compiler"
	"github.com/terassyi/nsid/internal/config"
	"github.com/terassyi/nsid/internal/path"
)

// IssueKind represents the type of a detected problem.
type IssueKind string

const (
	// IssueInvalidConfig indicates config.cue does not load.
	IssueInvalidConfig IssueKind = "invalid_config"
	// IssueMissingCompiler indicates makensis cannot be run.
	IssueMissingCompiler IssueKind = "missing_compiler"
	// IssueStaleSchema indicates schema.cue differs from the built-in schema.
	IssueStaleSchema IssueKind = "stale_schema"
	// IssueOutputNotWritable indicates scripts cannot be written to the output directory.
	IssueOutputNotWritable IssueKind = "output_not_writable"
	// IssueChecksumMismatch indicates an exported file changed after export.
	IssueChecksumMismatch IssueKind = "checksum_mismatch"
)

// Issue is one problem found by Check.
type Issue struct {
	Kind   IssueKind
	Path   string
	Detail string
}

// Message returns a human-readable description of the issue.
func (i Issue) Message() string {
	switch i.Kind {
	case IssueInvalidConfig:
		return fmt.Sprintf("%s does not load: %s", i.Path, i.Detail)
	case IssueMissingCompiler:
		return fmt.Sprintf("makensis %q cannot be run: %s", i.Path, i.Detail)
	case IssueStaleSchema:
		return fmt.Sprintf("%s is outdated (run nsid config schema)", i.Path)
	case IssueOutputNotWritable:
		return fmt.Sprintf("output directory %s is not writable: %s", i.Path, i.Detail)
	case IssueChecksumMismatch:
		return fmt.Sprintf("exported files in %s changed since export: %s", i.Path, i.Detail)
	default:
		return fmt.Sprintf("unknown issue at %s", i.Path)
	}
}

// Result contains the findings from a doctor check.
type Result struct {
	// CompilerVersion is set when makensis ran.
	CompilerVersion string
	Issues          []Issue
}

// HasIssues returns true if there are any issues found.
func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// Doctor checks the nsid environment.
type Doctor struct {
	configDir string
	makensis  string
	outputDir string
}

// Option configures a Doctor.
type Option func(*Doctor)

// WithMakensis overrides makensisPath from config.cue.
func WithMakensis(p string) Option {
	return func(d *Doctor) { d.makensis = p }
}

// WithOutputDir overrides outputDir from config.cue.
func WithOutputDir(dir string) Option {
	return func(d *Doctor) { d.outputDir = dir }
}

// New creates a new Doctor for the configuration in configDir.
func New(configDir string, opts ...Option) *Doctor {
	d := &Doctor{configDir: configDir}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Check performs all health checks and returns the results.
func (d *Doctor) Check(ctx context.Context) (*Result, error) {
	result := &Result{}

	configDir, err := path.Expand(d.configDir)
	if err != nil {
		return nil, err
	}

	// 1. Configuration
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		result.Issues = append(result.Issues, Issue{
			Kind:   IssueInvalidConfig,
			Path:   filepath.Join(configDir, config.ConfigFileName),
			Detail: err.Error(),
		})
		cfg = config.DefaultConfig()
	}

	// 2. Compiler
	makensis := d.makensis
	if makensis == "" {
		makensis = cfg.MakensisPath
	}
	version, err := compiler.NewCompiler(makensis).Version(ctx)
	if err != nil {
		result.Issues = append(result.Issues, Issue{Kind: IssueMissingCompiler, Path: makensis, Detail: rootCause(err)})
	} else {
		result.CompilerVersion = version
	}

	// 3. Schema
	if issue, ok := checkSchema(configDir); ok {
		result.Issues = append(result.Issues, issue)
	}

	// 4. Output directory
	outputDir := d.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if outputDir, err = path.Expand(outputDir); err != nil {
		return nil, err
	}
	result.Issues = append(result.Issues, checkOutputDir(outputDir)...)

	return result, nil
}

// checkSchema reports a schema.cue that no longer matches the built-in
// schema. A missing file is fine.
func checkSchema(configDir string) (Issue, bool) {
	schemaPath := filepath.Join(configDir, config.SchemaFileName)
	data, err := os.ReadFile(schemaPath)
	if err != nil || string(data) == cuemodule.SchemaCUE {
		return Issue{}, false
	}
	return Issue{Kind: IssueStaleSchema, Path: schemaPath}, true
}

// checkOutputDir tests the output directory for writability and checks
// a SHA256SUMS file left by a previous export. A missing directory is
// created on export and is fine.
func checkOutputDir(dir string) []Issue {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []Issue{{Kind: IssueOutputNotWritable, Path: dir, Detail: err.Error()}}
	}
	if !info.IsDir() {
		return []Issue{{Kind: IssueOutputNotWritable, Path: dir, Detail: "not a directory"}}
	}

	var issues []Issue
	tmp, err := os.CreateTemp(dir, ".nsid-doctor-*")
	if err != nil {
		issues = append(issues, Issue{Kind: IssueOutputNotWritable, Path: dir, Detail: rootCause(err)})
	} else {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := os.Stat(filepath.Join(dir, checksum.SumsFileName)); err == nil {
		if _, err := checksum.VerifySumsFile(dir); err != nil {
			issues = append(issues, Issue{Kind: IssueChecksumMismatch, Path: dir, Detail: err.Error()})
		}
	}
	return issues
}

// rootCause returns the innermost error message.
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
