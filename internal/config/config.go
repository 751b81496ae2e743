// Package config loads the nsid tool configuration from config.cue.
//
// The configuration only carries CLI defaults. Project files never read
// it, so the same project exports identically on every machine.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/terassyi/nsid/cuemodule"
	nsiderr "github.com/terassyi/nsid/internal/errors"
	"github.com/terassyi/nsid/internal/script"
)

// Default path constants
const (
	DefaultConfigDir = "~/.config/nsid"
	ConfigFileName   = "config.cue"
	SchemaFileName   = "schema.cue"
	DefaultMakensis  = "makensis"
	DefaultOutputDir = "."
)

// Config represents nsid configuration.
type Config struct {
	// MakensisPath is the compiler executable, looked up in PATH when it
	// has no directory part.
	MakensisPath string `json:"makensisPath"`
	// OutputDir receives exported scripts when --out is not given.
	OutputDir        string          `json:"outputDir"`
	DefaultEncoding  script.Encoding `json:"defaultEncoding"`
	DefaultLanguages []string        `json:"defaultLanguages,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MakensisPath:    DefaultMakensis,
		OutputDir:       DefaultOutputDir,
		DefaultEncoding: script.UTF8,
	}
}

// LoadConfig loads configuration from the config directory.
// Returns default config if config.cue doesn't exist or has no config block.
func LoadConfig(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, nsiderr.NewConfigError("failed to read config.cue", err).WithFile(configPath)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(configPath))
	if value.Err() != nil {
		return nil, nsiderr.NewConfigError("failed to build config.cue", value.Err()).WithFile(configPath)
	}

	// Look for config block
	configValue := value.LookupPath(cue.ParsePath("config"))
	if !configValue.Exists() {
		return DefaultConfig(), nil
	}

	schema := ctx.CompileString(cuemodule.SchemaCUE, cue.Filename(SchemaFileName))
	if schema.Err() != nil {
		return nil, fmt.Errorf("failed to compile embedded schema: %w", schema.Err())
	}
	configValue = schema.LookupPath(cue.ParsePath("#Config")).Unify(configValue)
	if err := configValue.Validate(cue.Concrete(true)); err != nil {
		return nil, nsiderr.NewConfigError("config does not match schema", err).WithFile(configPath).WithPath("config")
	}

	cfg := DefaultConfig()
	jsonBytes, err := configValue.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	slog.Debug("loaded config", "path", configPath, "makensis", cfg.MakensisPath, "outputDir", cfg.OutputDir)
	return cfg, nil
}

// ToCue generates CUE content from Config.
func (c *Config) ToCue() ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.Encode(map[string]any{
		"config": c,
	})
	if v.Err() != nil {
		return nil, fmt.Errorf("failed to encode config: %w", v.Err())
	}

	syn := v.Syntax()
	b, err := format.Node(syn)
	if err != nil {
		return nil, fmt.Errorf("failed to format config: %w", err)
	}

	return append([]byte("package nsid\n\n"), b...), nil
}

// SchemaResult reports what WriteSchema did.
type SchemaResult int

const (
	SchemaCreated SchemaResult = iota
	SchemaUpdated
	SchemaUpToDate
)

func (r SchemaResult) String() string {
	switch r {
	case SchemaCreated:
		return "created"
	case SchemaUpdated:
		return "updated"
	default:
		return "up to date"
	}
}

// WriteSchema places the embedded project schema in dir so CUE tooling can
// check project files against it.
func WriteSchema(dir string) (SchemaResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	schemaFile := filepath.Join(dir, SchemaFileName)
	result := SchemaCreated
	existing, err := os.ReadFile(schemaFile)
	switch {
	case err == nil && string(existing) == cuemodule.SchemaCUE:
		return SchemaUpToDate, nil
	case err == nil:
		result = SchemaUpdated
	case !errors.Is(err, os.ErrNotExist):
		return 0, fmt.Errorf("failed to read %s: %w", schemaFile, err)
	}

	if err := os.WriteFile(schemaFile, []byte(cuemodule.SchemaCUE), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", schemaFile, err)
	}
	slog.Info("schema.cue "+result.String(), "path", schemaFile)
	return result, nil
}

// Write saves cfg as config.cue in configDir. An existing file is only
// replaced when force is set.
func Write(cfg *Config, configDir string, force bool) (string, error) {
	configPath := filepath.Join(configDir, ConfigFileName)
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
	}

	data, err := cfg.ToCue()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", configDir, err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	return configPath, nil
}
