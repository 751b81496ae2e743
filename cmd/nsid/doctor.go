package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/doctor"
	"github.com/terassyi/nsid/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment for problems",
	Long: `Check that nsid can export and compile installers.

Checks that config.cue loads, that makensis runs, that schema.cue
matches this nsid version, that the output directory is writable, and
that files recorded in SHA256SUMS are unchanged.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var (
	doctorMakensis string
	doctorOut      string
)

func init() {
	doctorCmd.Flags().StringVar(&doctorMakensis, "makensis", "", "makensis executable (defaults to makensisPath in config.cue)")
	doctorCmd.Flags().StringVar(&doctorOut, "out", "", "Output directory (defaults to outputDir in config.cue)")
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	d := doctor.New(configDir, doctor.WithMakensis(doctorMakensis), doctor.WithOutputDir(doctorOut))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := d.Check(ctx)
	if err != nil {
		return err
	}

	style := ui.NewStyle()
	if result.CompilerVersion != "" {
		cmd.Printf("%s makensis %s\n", style.SuccessMark, result.CompilerVersion)
	}
	if !result.HasIssues() {
		cmd.Printf("%s No issues found\n", style.SuccessMark)
		return nil
	}
	for _, issue := range result.Issues {
		cmd.Printf("%s %s\n", style.FailMark, issue.Message())
	}
	return fmt.Errorf("doctor found %d issue(s)", len(result.Issues))
}
