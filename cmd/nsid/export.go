package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/checksum"
	"github.com/terassyi/nsid/internal/document"
	nsiderr "github.com/terassyi/nsid/internal/errors"
	"github.com/terassyi/nsid/internal/path"
	"github.com/terassyi/nsid/internal/reversal"
	"github.com/terassyi/nsid/internal/ui"
	"golang.org/x/sync/errgroup"
)

var exportCmd = &cobra.Command{
	Use:   "export <project...>",
	Short: "Write NSIS scripts for project files",
	Long: `Write the installer script for each project file.

Each project becomes <outputDir>/<project name>.nsi holding the install
and uninstall sections. With --split the uninstall section goes to
<name>_uninstall.nsi, included from the main script.

Several projects are exported concurrently with --parallel. A failing
project never leaves a partial script behind. With --checksums the
written files are recorded in <outputDir>/SHA256SUMS, which nsid verify
checks later.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	exportFlags    assembleFlags
	exportOut      string
	exportSplit    bool
	exportParallel int
	exportFormat   string
	exportSums     bool
)

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (defaults to outputDir in config.cue)")
	exportCmd.Flags().BoolVar(&exportSplit, "split", false, "Write the uninstall section to a separate included file")
	exportCmd.Flags().IntVar(&exportParallel, "parallel", 4, "Number of projects exported concurrently")
	exportCmd.Flags().StringVarP(&exportFormat, "output", "o", outputText, "Report format (text, json)")
	exportCmd.Flags().BoolVar(&exportSums, "checksums", false, "Record written files in SHA256SUMS")
}

// exportResult is the outcome of exporting one project.
type exportResult struct {
	Project       string             `json:"project"`
	Files         document.Files     `json:"files"`
	NonReversible []reversal.Warning `json:"nonReversible,omitempty"`
	// SHA256 maps each written file to its digest.
	SHA256 map[string]checksum.Digest `json:"sha256"`
}

// written lists the files an export produced.
func (r exportResult) written() []string {
	files := []string{r.Files.Script}
	if r.Files.Uninstall != "" {
		files = append(files, r.Files.Uninstall)
	}
	return files
}

func runExport(cmd *cobra.Command, args []string) error {
	_, paths, err := loadConfig()
	if err != nil {
		return err
	}
	if exportOut != "" {
		if paths, err = path.New(path.WithConfigDir(paths.ConfigDir()), path.WithOutputDir(exportOut)); err != nil {
			return err
		}
	}

	// Batches report progress on stderr; a single project needs none.
	var pm *ui.ProgressManager
	var report func(ui.Event)
	if len(args) > 1 && exportFormat != outputJSON {
		pm = ui.NewProgressManager(cmd.ErrOrStderr(), len(args), ui.IsTerminal(os.Stderr))
		report = pm.HandleEvent
	}

	results, err := exportAll(cmd.Context(), args, paths, &exportFlags, exportSplit, exportParallel, report)
	if pm != nil {
		pm.Wait()
	}
	if err != nil {
		return err
	}

	if exportSums {
		var files []string
		for _, r := range results {
			files = append(files, r.written()...)
		}
		sums, err := checksum.UpdateSumsFile(paths.OutputDir(), files)
		if err != nil {
			return err
		}
		slog.Info("checksums updated", "path", sums)
	}

	if exportFormat == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		cmd.Printf("Exported %s -> %s\n", r.Project, r.Files.Script)
		if r.Files.Uninstall != "" {
			cmd.Printf("  uninstaller: %s\n", r.Files.Uninstall)
		}
		for _, w := range r.NonReversible {
			cmd.PrintErrf("  warning: %s\n", w)
		}
	}
	if pm != nil {
		ui.PrintExportSummary(cmd.OutOrStdout(), pm.Results())
	}
	return nil
}

// exportAll runs one export pipeline per project, at most parallel at a
// time. Results keep the order of projects. report, when set, receives
// an event as each project starts and finishes.
func exportAll(ctx context.Context, projects []string, paths *path.Paths, f *assembleFlags, split bool, parallel int, report func(ui.Event)) ([]exportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if report == nil {
		report = func(ui.Event) {}
	}
	seen := make(map[string]string, len(projects))
	for _, p := range projects {
		out := paths.ScriptFile(p)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s both export to %s", prev, p, out)
		}
		seen[out] = p
	}
	results := make([]exportResult, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, projectPath := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report(ui.Event{Type: ui.EventStart, Project: projectPath})
			r, err := exportOne(projectPath, paths.ScriptFile(projectPath), f, split)
			if err != nil {
				report(ui.Event{Type: ui.EventError, Project: projectPath, Err: err})
				return err
			}
			report(ui.Event{
				Type:          ui.EventComplete,
				Project:       r.Project,
				Output:        r.Files.Script,
				NonReversible: len(r.NonReversible),
			})
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func exportOne(projectPath, scriptPath string, f *assembleFlags, split bool) (exportResult, error) {
	spec, docs, err := assemble(projectPath, f)
	if err != nil {
		return exportResult{}, err
	}

	if err := os.MkdirAll(filepath.Dir(scriptPath), 0755); err != nil {
		return exportResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	files := document.Files{Script: scriptPath}
	if split {
		files, err = document.WriteSplit(scriptPath, docs)
	} else {
		err = document.WriteFile(scriptPath, docs)
	}
	if err != nil {
		return exportResult{}, nsiderr.NewExportError(spec.Name, "", err).WithOutput(scriptPath)
	}

	r := exportResult{
		Project:       spec.Name,
		Files:         files,
		NonReversible: docs.NonReversible,
		SHA256:        make(map[string]checksum.Digest, 2),
	}
	for _, f := range r.written() {
		d, err := checksum.Calculate(f, checksum.AlgorithmSHA256)
		if err != nil {
			return exportResult{}, nsiderr.NewExportError(spec.Name, "", err).WithOutput(f)
		}
		r.SHA256[f] = d
	}
	return r, nil
}
