// Package project holds the package specification edited by the user and
// persisted as a project file.
package project

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/terassyi/nsid/internal/action"
	"github.com/terassyi/nsid/internal/reversal"
)

// File is a file or directory tree shipped with the package.
type File struct {
	// Source is a path on the build machine, relative to the project file.
	Source string `json:"source" yaml:"source"`
	// Destination is the installed path. Relative destinations are placed
	// under $INSTDIR. Defaults to $INSTDIR\<base name of Source>, or
	// $INSTDIR itself for recursive copies.
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Recursive   bool   `json:"recursive,omitempty" yaml:"recursive,omitempty"`
}

// Assets are icon, bitmap and license files referenced by the script.
// Paths are used verbatim.
type Assets struct {
	InstallIcon   string `json:"installIcon,omitempty" yaml:"installIcon,omitempty"`
	UninstallIcon string `json:"uninstallIcon,omitempty" yaml:"uninstallIcon,omitempty"`
	WelcomeBitmap string `json:"welcomeBitmap,omitempty" yaml:"welcomeBitmap,omitempty"`
	License       string `json:"license,omitempty" yaml:"license,omitempty"`
}

// Compression configures SetCompressor.
type Compression struct {
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Solid     bool   `json:"solid,omitempty" yaml:"solid,omitempty"`
}

// Spec is a complete package specification. It is only mutated through
// its methods and never concurrently; exports work on a Clone.
type Spec struct {
	Name            string `json:"name" yaml:"name"`
	Version         string `json:"version" yaml:"version"`
	Publisher       string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Caption         string `json:"caption,omitempty" yaml:"caption,omitempty"`
	BrandingText    string `json:"brandingText,omitempty" yaml:"brandingText,omitempty"`
	AboutURL        string `json:"aboutURL,omitempty" yaml:"aboutURL,omitempty"`
	HelpURL         string `json:"helpURL,omitempty" yaml:"helpURL,omitempty"`
	UpdateURL       string `json:"updateURL,omitempty" yaml:"updateURL,omitempty"`
	Comments        string `json:"comments,omitempty" yaml:"comments,omitempty"`
	Contact         string `json:"contact,omitempty" yaml:"contact,omitempty"`
	EstimatedSizeKB int    `json:"estimatedSizeKB,omitempty" yaml:"estimatedSizeKB,omitempty"`

	// MainExecutable is the installed program, relative to $INSTDIR. It is
	// the target of the generated shortcuts and the Add/Remove Programs
	// icon.
	MainExecutable string `json:"mainExecutable,omitempty" yaml:"mainExecutable,omitempty"`
	// OutputPath is the installer file name; defaults to
	// <Name>-<Version>-<arch>.exe.
	OutputPath       string      `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
	InstallDirPreset Preset      `json:"installDirPreset,omitempty" yaml:"installDirPreset,omitempty"`
	Compression      Compression `json:"compression,omitzero" yaml:"compression,omitempty"`
	Assets           Assets      `json:"assets,omitzero" yaml:"assets,omitempty"`

	Files   []File          `json:"files,omitempty" yaml:"files,omitempty"`
	Actions action.Sequence `json:"actions,omitzero" yaml:"actions,omitempty"`
	Options Options         `json:"options,omitzero" yaml:"options,omitempty"`

	// Snapshot declares the state of the target machine before install,
	// letting the uninstaller restore overwritten values.
	Snapshot *reversal.StaticSnapshot `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	// Manifests lists the files of recursive copies by source, so the
	// uninstaller removes exactly those files.
	Manifests map[string][]string `json:"manifests,omitempty" yaml:"manifests,omitempty"`
}

// New creates a Spec with defaults applied.
func New(name, version string) *Spec {
	s := &Spec{Name: name, Version: version}
	s.SetDefaults()
	return s
}

// SetDefaults fills unset fields.
func (s *Spec) SetDefaults() {
	if s.InstallDirPreset == "" {
		s.InstallDirPreset = Preset64
	}
	if s.InstallDirPreset == PresetUser && s.Options.InstallScope == "" {
		s.Options.InstallScope = ScopePerUser
	}
	if s.Caption == "" {
		s.Caption = "Installation Wizard"
	}
	if s.Compression.Algorithm == "" {
		s.Compression = Compression{Algorithm: "lzma", Solid: true}
	}
	s.Options.setDefaults()
}

// AddFile appends a file after validating it.
func (s *Spec) AddFile(f File) error {
	if strings.TrimSpace(f.Source) == "" {
		return fmt.Errorf("file source is empty")
	}
	if _, err := f.copyAction(); err != nil {
		return err
	}
	s.Files = append(s.Files, f)
	return nil
}

// RemoveFile removes the file at index i.
func (s *Spec) RemoveFile(i int) error {
	if i < 0 || i >= len(s.Files) {
		return fmt.Errorf("file index %d out of range [0,%d)", i, len(s.Files))
	}
	s.Files = slices.Delete(slices.Clone(s.Files), i, i+1)
	return nil
}

// AddAction appends a custom action.
func (s *Spec) AddAction(a action.Action) error {
	if a == nil {
		return fmt.Errorf("action is nil")
	}
	if a.Kind().IsReverseOnly() {
		return fmt.Errorf("%s actions are generated for the uninstaller and cannot be added", a.Kind())
	}
	s.Actions = s.Actions.Append(a)
	return nil
}

// RemoveAction removes the custom action at index i.
func (s *Spec) RemoveAction(i int) error {
	seq, err := s.Actions.Remove(i)
	if err != nil {
		return err
	}
	s.Actions = seq
	return nil
}

// MoveAction moves the custom action at from to index to.
func (s *Spec) MoveAction(from, to int) error {
	seq, err := s.Actions.Move(from, to)
	if err != nil {
		return err
	}
	s.Actions = seq
	return nil
}

// Clone returns an independent copy. Actions are immutable values and are
// shared.
func (s *Spec) Clone() *Spec {
	c := *s
	c.Files = slices.Clone(s.Files)
	c.Options = s.Options.clone()
	if s.Snapshot != nil {
		snap := reversal.StaticSnapshot{
			Keys: maps.Clone(s.Snapshot.Keys),
			Vars: maps.Clone(s.Snapshot.Vars),
		}
		if s.Snapshot.Values != nil {
			snap.Values = make(map[string]map[string]reversal.RegistryValue, len(s.Snapshot.Values))
			for k, v := range s.Snapshot.Values {
				snap.Values[k] = maps.Clone(v)
			}
		}
		for k, v := range snap.Vars {
			if v != nil {
				val := *v
				snap.Vars[k] = &val
			}
		}
		c.Snapshot = &snap
	}
	if s.Manifests != nil {
		c.Manifests = make(map[string][]string, len(s.Manifests))
		for k, v := range s.Manifests {
			c.Manifests[k] = slices.Clone(v)
		}
	}
	return &c
}

func (f File) destination() string {
	dest := strings.TrimRight(f.Destination, `\/`)
	if dest == "" {
		if f.Recursive {
			return `$INSTDIR`
		}
		src := strings.ReplaceAll(f.Source, "/", `\`)
		return `$INSTDIR\` + src[strings.LastIndex(src, `\`)+1:]
	}
	dest = strings.ReplaceAll(dest, "/", `\`)
	if strings.HasPrefix(dest, "$") || (len(dest) >= 2 && dest[1] == ':') {
		return dest
	}
	return `$INSTDIR\` + strings.TrimLeft(dest, `\`)
}

func (f File) copyAction() (action.CopyFile, error) {
	return action.NewCopyFile(f.Source, f.destination(), f.Recursive)
}
