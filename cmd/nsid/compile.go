package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/compiler"
	nsiderr "github.com/terassyi/nsid/internal/errors"
	nsidlog "github.com/terassyi/nsid/internal/log"
	"github.com/terassyi/nsid/internal/path"
)

var compileCmd = &cobra.Command{
	Use:   "compile <project>",
	Short: "Export a project and run makensis on it",
	Long: `Export the project's script, then compile it with makensis.

makensis runs in the project file's directory, so relative file sources
in the project resolve the same way as during export. The installer is
written to the project's outputPath, relative to that directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

var (
	compileFlags     assembleFlags
	compileMakensis  string
	compileOut       string
	compileSplit     bool
	compileVerbosity int
	compileDefines   map[string]string
	compileShowLog   bool
)

func init() {
	compileFlags.register(compileCmd)
	compileCmd.Flags().StringVar(&compileMakensis, "makensis", "", "makensis executable (defaults to makensisPath in config.cue)")
	compileCmd.Flags().StringVar(&compileOut, "out", "", "Script output directory (defaults to outputDir in config.cue)")
	compileCmd.Flags().BoolVar(&compileSplit, "split", false, "Write the uninstall section to a separate included file")
	compileCmd.Flags().IntVarP(&compileVerbosity, "verbosity", "V", 2, "makensis verbosity (0-4)")
	compileCmd.Flags().StringToStringVarP(&compileDefines, "define", "D", nil, "Symbols passed to makensis (NAME=value)")
	compileCmd.Flags().BoolVar(&compileShowLog, "show-output", false, "Print the makensis output")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}
	if compileOut != "" {
		if paths, err = path.New(path.WithConfigDir(paths.ConfigDir()), path.WithOutputDir(compileOut)); err != nil {
			return err
		}
	}

	projectPath := args[0]
	r, err := exportOne(projectPath, paths.ScriptFile(projectPath), &compileFlags, compileSplit)
	if err != nil {
		return err
	}
	for _, w := range r.NonReversible {
		cmd.PrintErrf("warning: %s\n", w)
	}

	bin := compileMakensis
	if bin == "" {
		bin = cfg.MakensisPath
	}
	workDir, err := filepath.Abs(filepath.Dir(projectPath))
	if err != nil {
		return err
	}
	opts := []compiler.Option{
		compiler.WithWorkDir(workDir),
		compiler.WithVerbosity(compileVerbosity),
	}
	for name, value := range compileDefines {
		opts = append(opts, compiler.WithDefine(name, value))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := compiler.NewCompiler(bin, opts...).Compile(ctx, r.Files.Script)
	if err != nil {
		var compileErr *nsiderr.CompileError
		if errors.As(err, &compileErr) && compileErr.Output != "" {
			recordCompileLog(cmd, paths, r, compileErr)
		}
		return err
	}
	if compileShowLog {
		cmd.Print(res.Output)
	}
	cmd.Printf("Compiled %s in %s\n", r.Files.Script, res.Duration.Round(time.Millisecond))
	return nil
}

// recordCompileLog keeps the makensis output of a failed compile under
// the logs directory. Failing to write the log only warns.
func recordCompileLog(cmd *cobra.Command, paths *path.Paths, r exportResult, compileErr *nsiderr.CompileError) {
	store := nsidlog.NewStore(paths.LogsDir())
	logPath, err := store.RecordFailure(r.Project, r.Files.Script, compileErr.Output, compileErr.Base.Cause)
	if err != nil {
		slog.Warn("failed to save compile log", "error", err)
		return
	}
	if err := store.Cleanup(nsidlog.DefaultKeepSessions); err != nil {
		slog.Warn("failed to clean up compile logs", "error", err)
	}
	cmd.PrintErrf("makensis output saved to %s (see nsid logs)\n", logPath)
}
