package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terassyi/nsid/internal/checksum"
	"github.com/terassyi/nsid/internal/config"
	"github.com/terassyi/nsid/internal/path"
	"github.com/terassyi/nsid/internal/project"
	"github.com/terassyi/nsid/internal/ui"
)

// newTestInitCmd creates an isolated init command for testing.
func newTestInitCmd(t *testing.T) *cobra.Command {
	t.Helper()
	var name, format string
	var force bool

	cmd := &cobra.Command{
		Use:  "init [dir]",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Save/restore package vars
			origName, origFormat, origForce, origDir := initName, initFormat, initForce, configDir
			defer func() { initName, initFormat, initForce, configDir = origName, origFormat, origForce, origDir }()
			initName, initFormat, initForce = name, format, force
			configDir = t.TempDir()
			return runInit(cmd, args)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "")
	cmd.Flags().StringVar(&format, "format", "cue", "")
	cmd.Flags().BoolVar(&force, "force", false, "")
	cmd.SetOut(&bytes.Buffer{})
	return cmd
}

func scaffold(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name+".yaml")
	_, err := project.WriteScaffold(p, name, "1.0.0", false)
	require.NoError(t, err)
	return p
}

func TestInit_CreatesFiles(t *testing.T) {
	dir := t.TempDir()

	cmd := newTestInitCmd(t)
	cmd.SetArgs([]string{"--name", "Widget", dir})
	require.NoError(t, cmd.Execute())

	spec, err := project.Load(filepath.Join(dir, "nsid.cue"))
	require.NoError(t, err)
	assert.Equal(t, "Widget", spec.Name)
	assert.Equal(t, "0.1.0", spec.Version)
	assert.Equal(t, "Widget.exe", spec.MainExecutable)

	schema, err := os.ReadFile(filepath.Join(dir, config.SchemaFileName))
	require.NoError(t, err)
	assert.Contains(t, string(schema), "#Project")
}

func TestInit_YAMLWithoutSchema(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gadget")

	cmd := newTestInitCmd(t)
	cmd.SetArgs([]string{"--format", "yaml", dir})
	require.NoError(t, cmd.Execute())

	spec, err := project.Load(filepath.Join(dir, "nsid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gadget", spec.Name)
	assert.NoFileExists(t, filepath.Join(dir, config.SchemaFileName))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	cmd := newTestInitCmd(t)
	cmd.SetArgs([]string{"--name", "Widget", dir})
	require.NoError(t, cmd.Execute())

	cmd = newTestInitCmd(t)
	cmd.SetArgs([]string{"--name", "Widget", dir})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cmd = newTestInitCmd(t)
	cmd.SetArgs([]string{"--name", "Widget", "--force", dir})
	require.NoError(t, cmd.Execute())
}

func TestInit_UnknownFormat(t *testing.T) {
	cmd := newTestInitCmd(t)
	cmd.SetArgs([]string{"--format", "toml", t.TempDir()})
	require.Error(t, cmd.Execute())
}

func TestExportAll(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "dist")
	projects := []string{
		scaffold(t, src, "Alpha"),
		scaffold(t, src, "Beta"),
		scaffold(t, src, "Gamma"),
	}
	paths, err := path.New(path.WithConfigDir(t.TempDir()), path.WithOutputDir(out))
	require.NoError(t, err)

	color.NoColor = true
	var progress bytes.Buffer
	pm := ui.NewProgressManager(&progress, len(projects), false)
	results, err := exportAll(context.Background(), projects, paths, &assembleFlags{}, false, 2, pm.HandleEvent)
	pm.Wait()
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, ui.ExportResults{Exported: 3}, pm.Results())
	assert.Contains(t, progress.String(), "Gamma -> "+filepath.Join(out, "Gamma.nsi"))

	for i, name := range []string{"Alpha", "Beta", "Gamma"} {
		assert.Equal(t, name, results[i].Project)
		assert.Equal(t, filepath.Join(out, name+".nsi"), results[i].Files.Script)
		assert.Empty(t, results[i].Files.Uninstall)

		data, err := os.ReadFile(results[i].Files.Script)
		require.NoError(t, err)
		assert.Contains(t, string(data), `!define APPNAME "`+name+`"`)
		assert.Contains(t, string(data), `Section "Uninstall"`)
	}
}

func TestExportAll_Split(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	paths, err := path.New(path.WithOutputDir(out))
	require.NoError(t, err)

	results, err := exportAll(context.Background(), []string{scaffold(t, src, "Alpha")}, paths, &assembleFlags{}, true, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, filepath.Join(out, "Alpha_uninstall.nsi"), results[0].Files.Uninstall)
	assert.FileExists(t, results[0].Files.Uninstall)

	require.Len(t, results[0].SHA256, 2)
	for f, d := range results[0].SHA256 {
		require.NoError(t, checksum.Verify(f, d))
	}

	_, err = checksum.UpdateSumsFile(out, results[0].written())
	require.NoError(t, err)
	entries, err := checksum.VerifySumsFile(out)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha.nsi", entries[0].Name)
	assert.Equal(t, "Alpha_uninstall.nsi", entries[1].Name)
}

func TestExportAll_DuplicateOutput(t *testing.T) {
	a := scaffold(t, t.TempDir(), "Alpha")
	b := scaffold(t, t.TempDir(), "Alpha")
	out := t.TempDir()
	paths, err := path.New(path.WithOutputDir(out))
	require.NoError(t, err)

	_, err = exportAll(context.Background(), []string{a, b}, paths, &assembleFlags{}, false, 2, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both export to")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportAll_FailureWritesNothingForBrokenProject(t *testing.T) {
	src := t.TempDir()
	broken := filepath.Join(src, "Broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"name": "Broken"}`), 0644))
	out := t.TempDir()
	paths, err := path.New(path.WithOutputDir(out))
	require.NoError(t, err)

	_, err = exportAll(context.Background(), []string{broken}, paths, &assembleFlags{}, false, 1, nil)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(out, "Broken.nsi"))
}

func TestAssemble_Flags(t *testing.T) {
	p := scaffold(t, t.TempDir(), "Alpha")

	_, base, err := assemble(p, &assembleFlags{})
	require.NoError(t, err)
	assert.Contains(t, base.Install, "Unicode true")

	_, docs, err := assemble(p, &assembleFlags{encoding: "cp1252", noLog: true})
	require.NoError(t, err)
	assert.Contains(t, docs.Install, "Unicode false")
	assert.Less(t, strings.Count(docs.Install, "Call WriteLog"), strings.Count(base.Install, "Call WriteLog"))

	_, _, err = assemble(p, &assembleFlags{encoding: "latin9"})
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestCompletion_ProjectCommands(t *testing.T) {
	for _, c := range []*cobra.Command{exportCmd, compileCmd, planCmd, validateCmd} {
		require.NotNil(t, c.ValidArgsFunction, c.Name())
		exts, directive := c.ValidArgsFunction(c, nil, "")
		assert.Equal(t, []string{"json", "yaml", "yml", "cue"}, exts)
		assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
	}

	var buf bytes.Buffer
	completionCmd.SetOut(&buf)
	t.Cleanup(func() { completionCmd.SetOut(nil) })
	require.NoError(t, completionCmd.RunE(completionCmd, []string{"fish"}))
	assert.Contains(t, buf.String(), "complete -c nsid")
}

func TestVersionInfo(t *testing.T) {
	info := newVersionInfo()
	assert.Equal(t, version, info.Version)
	assert.Equal(t, []string{"utf8", "cp1252"}, info.Encodings)
	assert.Contains(t, info.Platform, "/")
}
