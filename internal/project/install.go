package project

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/terassyi/nsid/internal/action"
)

// PerUser reports whether the package installs for the current user only.
func (s *Spec) PerUser() bool {
	return s.Options.InstallScope == ScopePerUser || s.InstallDirPreset == PresetUser
}

// RegistryRoot is the hive used for the package's own keys.
func (s *Spec) RegistryRoot() action.Root {
	if s.PerUser() {
		return action.RootHKCU
	}
	return action.RootHKLM
}

// RegView is the registry view selected by the preset.
func (s *Spec) RegView() int {
	if s.InstallDirPreset == Preset32 {
		return 32
	}
	return 64
}

// Arch is the architecture suffix of the default output name.
func (s *Spec) Arch() string {
	if s.InstallDirPreset == Preset32 {
		return "x86"
	}
	return "x86_64"
}

// InstallDir is the default installation directory.
func (s *Spec) InstallDir() string {
	if s.Options.DataDirOverride != "" {
		return strings.TrimPrefix(s.Options.DataDirOverride, "/D=")
	}
	switch s.InstallDirPreset {
	case Preset32:
		return `$PROGRAMFILES32\${APPNAME}`
	case PresetUser:
		return `$LOCALAPPDATA\${APPNAME}`
	default:
		return `$PROGRAMFILES64\${APPNAME}`
	}
}

// OutFile is the installer file name.
func (s *Spec) OutFile() string {
	if s.OutputPath != "" {
		return s.OutputPath
	}
	return fmt.Sprintf("%s-%s-%s.exe", s.Name, s.Version, s.Arch())
}

// ProductVersion returns the four-part numeric version required by
// VIProductVersion.
func (s *Spec) ProductVersion() (string, error) {
	v, err := semver.NewVersion(s.Version)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", s.Version, err)
	}
	return fmt.Sprintf("%d.%d.%d.0", v.Major(), v.Minor(), v.Patch()), nil
}

// InstallSequence returns the install actions: the file copies followed by
// the custom actions.
func (s *Spec) InstallSequence() (action.Sequence, error) {
	actions := make([]action.Action, 0, len(s.Files)+s.Actions.Len())
	for i, f := range s.Files {
		a, err := f.copyAction()
		if err != nil {
			return action.Sequence{}, fmt.Errorf("files[%d]: %w", i, err)
		}
		actions = append(actions, a)
	}
	return action.NewSequence(actions...).Concat(s.Actions), nil
}
