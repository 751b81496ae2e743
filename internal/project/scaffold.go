package project

import (
	"fmt"
	"os"

	"github.com/terassyi/nsid/internal/action"
)

// Scaffold returns a starter Spec for `nsid init`: one executable shipped
// to $INSTDIR and added to the user's PATH.
func Scaffold(name, version string) (*Spec, error) {
	if version == "" {
		version = "0.1.0"
	}
	s := New(name, version)
	s.MainExecutable = name + ".exe"
	if err := s.AddFile(File{Source: name + ".exe"}); err != nil {
		return nil, err
	}
	path, err := action.NewEnvAppend(action.ScopeUser, "PATH", `$INSTDIR`, ";")
	if err != nil {
		return nil, err
	}
	if err := s.AddAction(path); err != nil {
		return nil, err
	}
	if r := s.Validate(); !r.IsValid() {
		return nil, r.Err(name)
	}
	return s, nil
}

// WriteScaffold creates a starter project file at path. An existing file
// is only replaced when force is set.
func WriteScaffold(path, name, version string, force bool) (*Spec, error) {
	s, err := Scaffold(name, version)
	if err != nil {
		return nil, err
	}
	if err := Create(path, s, force); err != nil {
		return nil, err
	}
	return s, nil
}

// Create saves s as a new project file at path under the store lock.
func Create(path string, s *Spec, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	store, err := NewStore(path)
	if err != nil {
		return err
	}
	if err := store.Lock(); err != nil {
		return err
	}
	defer func() { _ = store.Unlock() }()
	return store.Save(s)
}
