package project

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	nsiderr "github.com/terassyi/nsid/internal/errors"
	"github.com/terassyi/nsid/internal/script"
)

// ValidationIssue is a single problem found in a Spec.
type ValidationIssue struct {
	Field   string `json:"field" yaml:"field"` // e.g. "version", "files[2].source"
	Message string `json:"message" yaml:"message"`
}

func (e ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds the result of validating a Spec.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors,omitempty" yaml:"errors,omitempty"`     // prevent export
	Warnings []ValidationIssue `json:"warnings,omitempty" yaml:"warnings,omitempty"` // reported only
}

// IsValid returns true if there are no fatal validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *ValidationResult) fail(field, message string) {
	r.Errors = append(r.Errors, ValidationIssue{Field: field, Message: message})
}

func (r *ValidationResult) warn(field, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{Field: field, Message: message})
}

// Err returns the first error as a ProjectError, or nil.
func (r *ValidationResult) Err(project string) error {
	if r.IsValid() {
		return nil
	}
	first := r.Errors[0]
	err := nsiderr.NewProjectError(project, first.Field, first.Message)
	if len(r.Errors) > 1 {
		err.Base.Details = map[string]any{"errors": len(r.Errors)}
	}
	return err
}

var compressors = []string{"zlib", "bzip2", "lzma"}

// Validate checks the Spec for problems that would make the generated
// script wrong or uncompilable.
func (s *Spec) Validate() *ValidationResult {
	r := &ValidationResult{}

	if strings.TrimSpace(s.Name) == "" {
		r.fail("name", "name is empty")
	} else if strings.ContainsAny(s.Name, `\/:*?"<>|`) {
		r.fail("name", "name contains characters not allowed in file names")
	}
	if s.Version == "" {
		r.fail("version", "version is empty")
	} else if _, err := semver.NewVersion(s.Version); err != nil {
		r.fail("version", fmt.Sprintf("%q is not a semantic version", s.Version))
	}

	if _, err := ParsePreset(string(s.InstallDirPreset)); err != nil {
		r.fail("installDirPreset", err.Error())
	}
	if s.Compression.Algorithm != "" && !slices.Contains(compressors, s.Compression.Algorithm) {
		r.fail("compression.algorithm", fmt.Sprintf("unknown compressor %q (expected zlib, bzip2 or lzma)", s.Compression.Algorithm))
	}

	switch s.Options.InstallScope {
	case "", ScopePerUser, ScopePerMachine:
	default:
		r.fail("options.installScope", fmt.Sprintf("unknown scope %q (expected perUser or perMachine)", s.Options.InstallScope))
	}
	switch s.Options.ExecutionLevel {
	case "", ExecNone, ExecUser, ExecHighest, ExecAdmin:
	default:
		r.fail("options.executionLevel", fmt.Sprintf("unknown execution level %q", s.Options.ExecutionLevel))
	}
	if s.PerUser() && s.Options.ExecutionLevel == ExecAdmin {
		r.warn("options.executionLevel", "per-user installs do not need admin rights")
	}
	if !s.PerUser() && (s.Options.ExecutionLevel == ExecUser || s.Options.ExecutionLevel == ExecNone) {
		r.warn("options.executionLevel", "per-machine installs usually require admin rights")
	}
	if _, err := NormalizeLanguages(s.Options.Languages); err != nil {
		r.fail("options.languages", err.Error())
	}
	if _, err := script.ParseEncoding(string(s.Options.Encoding)); err != nil {
		r.fail("options.encoding", err.Error())
	}
	if s.Options.LogPath != nil && strings.TrimSpace(*s.Options.LogPath) == "" {
		r.fail("options.logPath", "log path is empty")
	}

	for i, f := range s.Files {
		if strings.TrimSpace(f.Source) == "" {
			r.fail(fmt.Sprintf("files[%d].source", i), "source is empty")
			continue
		}
		if _, err := f.copyAction(); err != nil {
			r.fail(fmt.Sprintf("files[%d]", i), err.Error())
		}
	}
	for i, a := range s.Actions.All() {
		if a.Kind().IsReverseOnly() {
			r.fail(fmt.Sprintf("actions[%d].kind", i), fmt.Sprintf("%s is generated for the uninstaller", a.Kind()))
		}
	}

	if s.MainExecutable == "" {
		r.warn("mainExecutable", "no main executable; shortcuts are not created")
	}
	if s.Publisher == "" {
		r.warn("publisher", "publisher is empty")
	}
	return r
}
