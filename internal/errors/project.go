//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "fmt"

// ProjectError represents an invalid package description or a project file
// that could not be saved.
type ProjectError struct {
	Base Error `json:"error"`

	// Project is the package name, when known.
	Project string `json:"project,omitempty"`

	// Field is the offending field, when known.
	Field string `json:"field,omitempty"`

	// LockFile is the lock file path for lock conflicts.
	LockFile string `json:"lockFile,omitempty"`
}

// NewProjectError creates a ProjectError for an invalid field.
func NewProjectError(project, field, message string) *ProjectError {
	return &ProjectError{
		Base: Error{
			Category: CategoryProject,
			Code:     CodeProjectInvalid,
			Message:  message,
		},
		Project: project,
		Field:   field,
	}
}

// NewProjectLockError creates a ProjectError for a project file held by
// another nsid process.
func NewProjectLockError(lockFile string) *ProjectError {
	return &ProjectError{
		Base: Error{
			Category: CategoryProject,
			Code:     CodeProjectLocked,
			Message:  "project file locked",
			Hint:     fmt.Sprintf("Wait for the other process to finish, or\nrun 'rm %s' if it's stale.", lockFile),
		},
		LockFile: lockFile,
	}
}

// WithCause sets the underlying error.
func (e *ProjectError) WithCause(cause error) *ProjectError {
	e.Base.Cause = cause
	return e
}

// Error implements the error interface.
func (e *ProjectError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Base.Error())
	}
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *ProjectError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *ProjectError) Is(target error) bool {
	t, ok := target.(*ProjectError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
