package action

import "strings"

// CopyFile installs Source (a path on the build machine) to Destination
// (an install-time path such as $INSTDIR\app.exe). When Recursive is set,
// Source is a directory whose contents are copied into the Destination
// directory.
type CopyFile struct {
	source      string
	destination string
	recursive   bool
}

// NewCopyFile creates a CopyFile action.
func NewCopyFile(source, destination string, recursive bool) (CopyFile, error) {
	if err := requireNonEmpty(KindCopyFile, "source", source); err != nil {
		return CopyFile{}, err
	}
	if err := requireNonEmpty(KindCopyFile, "destination", destination); err != nil {
		return CopyFile{}, err
	}
	if err := requireNoNUL(KindCopyFile, "destination", destination); err != nil {
		return CopyFile{}, err
	}
	if !recursive && strings.HasSuffix(destination, `\`) {
		return CopyFile{}, invalid(KindCopyFile, "destination", "file path (no trailing backslash)", destination)
	}
	return CopyFile{source: source, destination: strings.TrimRight(destination, `\`), recursive: recursive}, nil
}

func (CopyFile) Kind() Kind            { return KindCopyFile }
func (a CopyFile) Target() string      { return a.destination }
func (a CopyFile) Source() string      { return a.source }
func (a CopyFile) Destination() string { return a.destination }
func (a CopyFile) Recursive() bool     { return a.recursive }
func (CopyFile) isAction()             {}

// CreateDir creates a directory at install time.
type CreateDir struct {
	path string
}

// NewCreateDir creates a CreateDir action.
func NewCreateDir(path string) (CreateDir, error) {
	if err := requireNonEmpty(KindCreateDir, "path", path); err != nil {
		return CreateDir{}, err
	}
	if err := requireNoNUL(KindCreateDir, "path", path); err != nil {
		return CreateDir{}, err
	}
	return CreateDir{path: strings.TrimRight(path, `\`)}, nil
}

func (CreateDir) Kind() Kind       { return KindCreateDir }
func (a CreateDir) Target() string { return a.path }
func (a CreateDir) Path() string   { return a.path }
func (CreateDir) isAction()        {}

// CreateShortcut creates a .lnk file pointing at an installed target.
type CreateShortcut struct {
	path      string
	target    string
	arguments string
	icon      string
}

// NewCreateShortcut creates a CreateShortcut action. Path must name a .lnk file.
func NewCreateShortcut(path, target, arguments, icon string) (CreateShortcut, error) {
	if err := requireNonEmpty(KindCreateShortcut, "path", path); err != nil {
		return CreateShortcut{}, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".lnk") {
		return CreateShortcut{}, invalid(KindCreateShortcut, "path", "path ending in .lnk", path)
	}
	if err := requireNonEmpty(KindCreateShortcut, "target", target); err != nil {
		return CreateShortcut{}, err
	}
	return CreateShortcut{path: path, target: target, arguments: arguments, icon: icon}, nil
}

func (CreateShortcut) Kind() Kind           { return KindCreateShortcut }
func (a CreateShortcut) Target() string     { return a.path }
func (a CreateShortcut) Path() string       { return a.path }
func (a CreateShortcut) LinkTarget() string { return a.target }
func (a CreateShortcut) Arguments() string  { return a.arguments }
func (a CreateShortcut) Icon() string       { return a.icon }
func (CreateShortcut) isAction()            {}

// ExecPostInstall runs a program after installation. Its effects are
// opaque, so it has no inverse.
type ExecPostInstall struct {
	command   string
	arguments string
	wait      bool
}

// NewExecPostInstall creates an ExecPostInstall action.
func NewExecPostInstall(command, arguments string, wait bool) (ExecPostInstall, error) {
	if err := requireNonEmpty(KindExecPostInstall, "command", command); err != nil {
		return ExecPostInstall{}, err
	}
	return ExecPostInstall{command: command, arguments: arguments, wait: wait}, nil
}

func (ExecPostInstall) Kind() Kind          { return KindExecPostInstall }
func (a ExecPostInstall) Target() string    { return a.command }
func (a ExecPostInstall) Command() string   { return a.command }
func (a ExecPostInstall) Arguments() string { return a.arguments }
func (a ExecPostInstall) Wait() bool        { return a.wait }
func (ExecPostInstall) isAction()           {}

// DeleteFile removes an installed file. With Recursive it removes an
// installed directory tree.
type DeleteFile struct {
	path      string
	recursive bool
}

// NewDeleteFile creates a DeleteFile action.
func NewDeleteFile(path string, recursive bool) (DeleteFile, error) {
	if err := requireNonEmpty(KindDeleteFile, "path", path); err != nil {
		return DeleteFile{}, err
	}
	return DeleteFile{path: path, recursive: recursive}, nil
}

func (DeleteFile) Kind() Kind        { return KindDeleteFile }
func (a DeleteFile) Target() string  { return a.path }
func (a DeleteFile) Path() string    { return a.path }
func (a DeleteFile) Recursive() bool { return a.recursive }
func (DeleteFile) isAction()         {}

// RemoveDir removes a directory only if it is empty.
type RemoveDir struct {
	path string
}

// NewRemoveDir creates a RemoveDir action.
func NewRemoveDir(path string) (RemoveDir, error) {
	if err := requireNonEmpty(KindRemoveDir, "path", path); err != nil {
		return RemoveDir{}, err
	}
	return RemoveDir{path: path}, nil
}

func (RemoveDir) Kind() Kind       { return KindRemoveDir }
func (a RemoveDir) Target() string { return a.path }
func (a RemoveDir) Path() string   { return a.path }
func (RemoveDir) isAction()        {}

// DeleteShortcut removes a shortcut file.
type DeleteShortcut struct {
	path string
}

// NewDeleteShortcut creates a DeleteShortcut action.
func NewDeleteShortcut(path string) (DeleteShortcut, error) {
	if err := requireNonEmpty(KindDeleteShortcut, "path", path); err != nil {
		return DeleteShortcut{}, err
	}
	return DeleteShortcut{path: path}, nil
}

func (DeleteShortcut) Kind() Kind       { return KindDeleteShortcut }
func (a DeleteShortcut) Target() string { return a.path }
func (a DeleteShortcut) Path() string   { return a.path }
func (DeleteShortcut) isAction()        {}
