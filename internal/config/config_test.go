package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terassyi/nsid/cuemodule"
	nsiderr "github.com/terassyi/nsid/internal/errors"
	"github.com/terassyi/nsid/internal/script"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultMakensis, cfg.MakensisPath)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, script.UTF8, cfg.DefaultEncoding)
	assert.Empty(t, cfg.DefaultLanguages)
}

func TestLoadConfig_NoConfigFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_WithConfigFile(t *testing.T) {
	dir := writeConfig(t, `package nsid

config: {
    makensisPath: "/opt/nsis/makensis"
    outputDir: "dist"
    defaultEncoding: "cp1252"
    defaultLanguages: ["German", "French"]
}
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/nsis/makensis", cfg.MakensisPath)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, script.CP1252, cfg.DefaultEncoding)
	assert.Equal(t, []string{"German", "French"}, cfg.DefaultLanguages)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := writeConfig(t, `package nsid

config: {
    outputDir: "build"
}
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "build", cfg.OutputDir)
	// the rest keeps defaults
	assert.Equal(t, DefaultMakensis, cfg.MakensisPath)
	assert.Equal(t, script.UTF8, cfg.DefaultEncoding)
}

func TestLoadConfig_NoConfigBlock(t *testing.T) {
	dir := writeConfig(t, `package nsid

somethingElse: "value"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid syntax",
			content: `package nsid
config: {
    outputDir: "dist"
`,
		},
		{
			name: "unknown field",
			content: `package nsid
config: dataDir: "~/data"
`,
		},
		{
			name: "unknown encoding",
			content: `package nsid
config: defaultEncoding: "latin1"
`,
		},
		{
			name: "unknown language",
			content: `package nsid
config: defaultLanguages: ["Klingon"]
`,
		},
		{
			name: "empty makensis path",
			content: `package nsid
config: makensisPath: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.content)

			_, err := LoadConfig(dir)
			require.Error(t, err)
			var cfgErr *nsiderr.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, filepath.Join(dir, ConfigFileName), cfgErr.File)
		})
	}
}

func TestConfig_ToCue(t *testing.T) {
	cfg := &Config{
		MakensisPath:     "/usr/bin/makensis",
		OutputDir:        "out",
		DefaultEncoding:  script.UTF8,
		DefaultLanguages: []string{"Japanese"},
	}

	cueBytes, err := cfg.ToCue()
	require.NoError(t, err)

	cueContent := string(cueBytes)
	assert.Contains(t, cueContent, "package nsid")
	assert.Contains(t, cueContent, "config")
	assert.Contains(t, cueContent, "makensisPath")
	assert.Contains(t, cueContent, "/usr/bin/makensis")
	assert.Contains(t, cueContent, "outputDir")
	assert.Contains(t, cueContent, "Japanese")
}

func TestConfig_ToCue_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{
			name: "customized",
			cfg: &Config{
				MakensisPath:     `C:\Program Files (x86)\NSIS\makensis.exe`,
				OutputDir:        "dist",
				DefaultEncoding:  script.CP1252,
				DefaultLanguages: []string{"German"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path, err := Write(tt.cfg, dir, false)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

			loaded, err := LoadConfig(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.cfg, loaded)
		})
	}
}

func TestWrite_RefusesExisting(t *testing.T) {
	dir := writeConfig(t, "package nsid\n")

	_, err := Write(DefaultConfig(), dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = Write(DefaultConfig(), dir, true)
	require.NoError(t, err)
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWriteSchema(t *testing.T) {
	tests := []struct {
		name         string
		existingFile bool
		content      string
		wantResult   SchemaResult
	}{
		{
			name:       "creates schema.cue when not present",
			wantResult: SchemaCreated,
		},
		{
			name:         "no change when content matches",
			existingFile: true,
			content:      cuemodule.SchemaCUE,
			wantResult:   SchemaUpToDate,
		},
		{
			name:         "updates when content differs",
			existingFile: true,
			content:      "package nsid\n\n// outdated schema\n",
			wantResult:   SchemaUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			if tt.existingFile {
				err := os.WriteFile(filepath.Join(tmpDir, SchemaFileName), []byte(tt.content), 0644)
				require.NoError(t, err)
			}

			result, err := WriteSchema(tmpDir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, result)

			// Verify file content always matches embedded schema
			got, err := os.ReadFile(filepath.Join(tmpDir, SchemaFileName))
			require.NoError(t, err)
			assert.Equal(t, cuemodule.SchemaCUE, string(got))
		})
	}
}

func TestWriteSchema_CreatesDirectory(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "subdir", "nested")

	result, err := WriteSchema(newDir)
	require.NoError(t, err)
	assert.Equal(t, SchemaCreated, result)

	got, err := os.ReadFile(filepath.Join(newDir, SchemaFileName))
	require.NoError(t, err)
	assert.Equal(t, cuemodule.SchemaCUE, string(got))
}
