// Package path resolves the directories and files nsid reads and writes.
package path

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/terassyi/nsid/internal/config"
)

// Default path suffixes (relative to home directory)
const (
	defaultConfigSuffix = ".config/nsid"
)

// ScriptExt is the extension of exported scripts.
const ScriptExt = ".nsi"

// Paths holds configurable paths for nsid.
type Paths struct {
	configDir string
	outputDir string
}

// Option is a functional option for configuring Paths.
type Option func(*Paths)

// WithConfigDir sets a custom configuration directory.
func WithConfigDir(dir string) Option {
	return func(p *Paths) {
		p.configDir = dir
	}
}

// WithOutputDir sets the directory exported scripts are written to.
func WithOutputDir(dir string) Option {
	return func(p *Paths) {
		p.outputDir = dir
	}
}

// New creates a new Paths with optional custom configuration.
func New(opts ...Option) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	p := &Paths{
		configDir: filepath.Join(home, defaultConfigSuffix),
		outputDir: config.DefaultOutputDir,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// NewFromConfig creates Paths from Config. configDir is where cfg was
// loaded from.
func NewFromConfig(cfg *config.Config, configDir string) (*Paths, error) {
	dir, err := Expand(configDir)
	if err != nil {
		return nil, err
	}

	outputDir, err := Expand(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		outputDir = config.DefaultOutputDir
	}

	return &Paths{
		configDir: dir,
		outputDir: outputDir,
	}, nil
}

// ConfigDir returns the configuration directory.
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// ConfigFile returns the path to config.cue.
// Returns <configDir>/config.cue
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, config.ConfigFileName)
}

// LogsDir returns the directory holding compile logs.
// Returns <configDir>/logs
func (p *Paths) LogsDir() string {
	return filepath.Join(p.configDir, "logs")
}

// OutputDir returns the directory exported scripts are written to.
func (p *Paths) OutputDir() string {
	return p.outputDir
}

// ScriptFile returns the export destination for a project file.
// Returns <outputDir>/<project base name>.nsi
func (p *Paths) ScriptFile(projectPath string) string {
	base := filepath.Base(projectPath)
	return filepath.Join(p.outputDir, strings.TrimSuffix(base, filepath.Ext(base))+ScriptExt)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Expand expands ~ to the home directory.
func Expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}

	if path == "~" {
		return os.UserHomeDir()
	}

	return path, nil
}
