//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// ExportError reports an aborted export. Nothing is written when an
// export fails.
type ExportError struct {
	Base Error `json:"error"`

	// Project is the package name.
	Project string `json:"project,omitempty"`

	// Document is "install" or "uninstall" when the failure is specific to one.
	Document string `json:"document,omitempty"`

	// Output is the path that would have been written.
	Output string `json:"output,omitempty"`
}

// NewExportError creates an ExportError.
func NewExportError(project, document string, cause error) *ExportError {
	return &ExportError{
		Base: Error{
			Category: CategoryExport,
			Code:     CodeExportFailed,
			Message:  "export failed",
			Cause:    cause,
		},
		Project:  project,
		Document: document,
	}
}

// WithOutput sets the output path.
func (e *ExportError) WithOutput(path string) *ExportError {
	e.Output = path
	return e
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *ExportError) Is(target error) bool {
	t, ok := target.(*ExportError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}

// CompileError reports a failed makensis run.
type CompileError struct {
	Base Error `json:"error"`

	// Compiler is the compiler executable path.
	Compiler string `json:"compiler,omitempty"`

	// Script is the script passed to the compiler.
	Script string `json:"script,omitempty"`

	// Output is the compiler's combined output.
	Output string `json:"output,omitempty"`
}

// NewCompileError creates a CompileError.
func NewCompileError(compiler, script, output string, cause error) *CompileError {
	return &CompileError{
		Base: Error{
			Category: CategoryCompile,
			Code:     CodeCompileFailed,
			Message:  "makensis failed",
			Cause:    cause,
			Hint:     "Set the compiler path with --makensis or makensisPath in config.cue.",
		},
		Compiler: compiler,
		Script:   script,
		Output:   output,
	}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
