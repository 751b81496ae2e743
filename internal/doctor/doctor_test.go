package doctor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terassyi/nsid/cuemodule"
	"github.com/terassyi/nsid/internal/checksum"
	"github.com/terassyi/nsid/internal/config"
)

func fakeMakensis(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	p := filepath.Join(t.TempDir(), "makensis")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\necho v3.10\n"), 0755))
	return p
}

func kinds(r *Result) []IssueKind {
	var ks []IssueKind
	for _, i := range r.Issues {
		ks = append(ks, i.Kind)
	}
	return ks
}

func TestDoctor_Healthy(t *testing.T) {
	configDir := t.TempDir()
	_, err := config.WriteSchema(configDir)
	require.NoError(t, err)

	d := New(configDir, WithMakensis(fakeMakensis(t)), WithOutputDir(t.TempDir()))
	result, err := d.Check(context.Background())
	require.NoError(t, err)

	assert.False(t, result.HasIssues(), "issues: %v", result.Issues)
	assert.Equal(t, "v3.10", result.CompilerVersion)
}

func TestDoctor_MissingCompiler(t *testing.T) {
	d := New(t.TempDir(), WithMakensis("/nonexistent/makensis"), WithOutputDir(t.TempDir()))
	result, err := d.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []IssueKind{IssueMissingCompiler}, kinds(result))
	assert.Empty(t, result.CompilerVersion)
	assert.Contains(t, result.Issues[0].Message(), `makensis "/nonexistent/makensis" cannot be run`)
}

func TestDoctor_InvalidConfigFallsBackToDefaults(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.ConfigFileName),
		[]byte("package nsid\nconfig: defaultEncoding: \"latin1\"\n"), 0644))

	d := New(configDir, WithMakensis(fakeMakensis(t)), WithOutputDir(t.TempDir()))
	result, err := d.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []IssueKind{IssueInvalidConfig}, kinds(result))
	assert.Equal(t, "v3.10", result.CompilerVersion)
}

func TestDoctor_StaleSchema(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.SchemaFileName), []byte("package nsid\n"), 0644))

	d := New(configDir, WithMakensis(fakeMakensis(t)), WithOutputDir(t.TempDir()))
	result, err := d.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []IssueKind{IssueStaleSchema}, kinds(result))
	assert.Contains(t, result.Issues[0].Message(), "nsid config schema")
}

func TestDoctor_OutputDir(t *testing.T) {
	bin := fakeMakensis(t)

	t.Run("missing directory is fine", func(t *testing.T) {
		d := New(t.TempDir(), WithMakensis(bin), WithOutputDir(filepath.Join(t.TempDir(), "dist")))
		result, err := d.Check(context.Background())
		require.NoError(t, err)
		assert.False(t, result.HasIssues())
	})

	t.Run("file instead of directory", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "dist")
		require.NoError(t, os.WriteFile(f, nil, 0644))

		d := New(t.TempDir(), WithMakensis(bin), WithOutputDir(f))
		result, err := d.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []IssueKind{IssueOutputNotWritable}, kinds(result))
	})

	t.Run("writability check leaves no file", func(t *testing.T) {
		out := t.TempDir()
		d := New(t.TempDir(), WithMakensis(bin), WithOutputDir(out))
		_, err := d.Check(context.Background())
		require.NoError(t, err)

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestDoctor_ChecksumMismatch(t *testing.T) {
	out := t.TempDir()
	script := filepath.Join(out, "app.nsi")
	require.NoError(t, os.WriteFile(script, []byte("Name \"app\"\n"), 0644))
	_, err := checksum.UpdateSumsFile(out, []string{script})
	require.NoError(t, err)

	d := New(t.TempDir(), WithMakensis(fakeMakensis(t)), WithOutputDir(out))
	result, err := d.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, result.HasIssues())

	require.NoError(t, os.WriteFile(script, []byte("Name \"edited\"\n"), 0644))
	result, err = d.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []IssueKind{IssueChecksumMismatch}, kinds(result))
}

func TestIssue_Message(t *testing.T) {
	tests := []struct {
		issue Issue
		want  string
	}{
		{Issue{Kind: IssueInvalidConfig, Path: "config.cue", Detail: "bad"}, "config.cue does not load: bad"},
		{Issue{Kind: IssueOutputNotWritable, Path: "dist", Detail: "permission denied"}, "output directory dist is not writable: permission denied"},
		{Issue{Kind: "other", Path: "x"}, "unknown issue at x"},
	}
	for _, tt := range tests {
		t.Run(string(tt.issue.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.Message())
		})
	}
}

func TestCheckSchema_UpToDate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SchemaFileName), []byte(cuemodule.SchemaCUE), 0644))
	_, ok := checkSchema(dir)
	assert.False(t, ok)
}
