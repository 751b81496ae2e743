package project

import (
	"fmt"
	"slices"
	"strings"

	"github.com/terassyi/nsid/internal/script"
)

// Preset selects the default installation directory and registry view.
type Preset string

const (
	Preset64   Preset = "64-bit"
	Preset32   Preset = "32-bit"
	PresetUser Preset = "per-user"
)

// ParsePreset parses an install directory preset. An empty string yields
// Preset64.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "", "64-bit", "64", "x64":
		return Preset64, nil
	case "32-bit", "32", "x86":
		return Preset32, nil
	case "per-user", "peruser", "user":
		return PresetUser, nil
	default:
		return "", fmt.Errorf("unknown install directory preset %q", s)
	}
}

// Scope is whether a package installs for the current user or for all
// users of the machine.
type Scope string

const (
	ScopePerUser    Scope = "perUser"
	ScopePerMachine Scope = "perMachine"
)

// ExecutionLevel is the privilege level the installer requests.
type ExecutionLevel string

const (
	ExecNone    ExecutionLevel = "none"
	ExecUser    ExecutionLevel = "user"
	ExecHighest ExecutionLevel = "highest"
	ExecAdmin   ExecutionLevel = "admin"
)

// DefaultLanguage is always the first language of a package.
const DefaultLanguage = "English"

// AvailableLanguages are the MUI languages a package may list.
var AvailableLanguages = []string{
	"English", "German", "French", "Spanish", "Italian", "Portuguese",
	"Dutch", "Danish", "Swedish", "Norwegian", "Finnish", "Polish", "Czech",
	"Hungarian", "Romanian", "Ukrainian",
}

// Options are the installer-wide switches.
type Options struct {
	// Silent makes the installer run without pages.
	Silent bool `json:"silent,omitempty" yaml:"silent,omitempty"`
	// NoIcons skips shortcut creation unconditionally. At run time the
	// /NOICONS switch has the same effect.
	NoIcons bool `json:"noIcons,omitempty" yaml:"noIcons,omitempty"`
	// LogPath enables logging to a fixed file. When nil, logging only
	// happens when the installer is run with /LOG[=FILE].
	LogPath *string `json:"logPath,omitempty" yaml:"logPath,omitempty"`
	// DataDirOverride replaces the preset installation directory. It is
	// written without the /D= marker.
	DataDirOverride string         `json:"dataDirOverride,omitempty" yaml:"dataDirOverride,omitempty"`
	InstallScope    Scope          `json:"installScope,omitempty" yaml:"installScope,omitempty"`
	ExecutionLevel  ExecutionLevel `json:"executionLevel,omitempty" yaml:"executionLevel,omitempty"`
	// Languages is an ordered set. English is always first.
	Languages []string        `json:"languages,omitempty" yaml:"languages,omitempty"`
	Encoding  script.Encoding `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// NormalizeLanguages returns langs with English first and duplicates
// removed, keeping the given order otherwise. Names are matched
// case-insensitively against AvailableLanguages.
func NormalizeLanguages(langs []string) ([]string, error) {
	out := []string{DefaultLanguage}
	for _, l := range langs {
		i := slices.IndexFunc(AvailableLanguages, func(a string) bool { return strings.EqualFold(a, strings.TrimSpace(l)) })
		if i < 0 {
			return nil, fmt.Errorf("unsupported language %q", l)
		}
		if !slices.Contains(out, AvailableLanguages[i]) {
			out = append(out, AvailableLanguages[i])
		}
	}
	return out, nil
}

func (o *Options) setDefaults() {
	if o.InstallScope == "" {
		o.InstallScope = ScopePerMachine
	}
	if o.ExecutionLevel == "" {
		if o.InstallScope == ScopePerUser {
			o.ExecutionLevel = ExecUser
		} else {
			o.ExecutionLevel = ExecAdmin
		}
	}
	if o.Encoding == "" {
		o.Encoding = script.UTF8
	}
	if len(o.Languages) == 0 {
		o.Languages = []string{DefaultLanguage}
	}
}

func (o Options) clone() Options {
	c := o
	if o.LogPath != nil {
		p := *o.LogPath
		c.LogPath = &p
	}
	c.Languages = slices.Clone(o.Languages)
	return c
}
