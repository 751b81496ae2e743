package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/document"
	"github.com/terassyi/nsid/internal/project"
	"github.com/terassyi/nsid/internal/reversal"
	"github.com/terassyi/nsid/internal/script"
)

// assembleFlags are shared by the commands that render documents.
type assembleFlags struct {
	encoding       string
	forceKeyDelete bool
	noLog          bool
	liveSnapshot   bool
}

func (f *assembleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Script encoding (utf8, cp1252); defaults to the project setting")
	cmd.Flags().BoolVar(&f.forceKeyDelete, "force-key-delete", false, "Delete registry keys created by the installer even if they still hold values")
	cmd.Flags().BoolVar(&f.noLog, "no-log", false, "Omit per-action WriteLog calls")
	cmd.Flags().BoolVar(&f.liveSnapshot, "live-snapshot", false, "Read the pre-install state from this machine's registry (Windows only)")
}

// assemble loads a project file and renders its documents. Relative
// sources resolve against the project file's directory.
func assemble(projectPath string, f *assembleFlags) (*project.Spec, *document.Documents, error) {
	spec, err := project.Load(projectPath)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range spec.Validate().Warnings {
		slog.Warn("project warning", "project", projectPath, "field", w.Field, "message", w.Message)
	}

	opts := []document.Option{
		document.WithVersion(version),
		document.WithBaseDir(filepath.Dir(projectPath)),
		document.WithForceKeyDelete(f.forceKeyDelete),
	}
	if f.encoding != "" {
		enc, err := script.ParseEncoding(f.encoding)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, document.WithEncoding(enc))
	}
	if f.noLog {
		opts = append(opts, document.WithoutLog())
	}
	if f.liveSnapshot {
		snap, err := reversal.NewLiveSnapshot(spec.Options.InstallScope == project.ScopePerMachine)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, document.WithSnapshot(snap))
	}

	docs, err := document.Assemble(spec, opts...)
	if err != nil {
		return nil, nil, err
	}
	return spec, docs, nil
}
