package main

import (
	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/printer"
)

var planCmd = &cobra.Command{
	Use:   "plan <project>",
	Short: "Show the install and uninstall plans",
	Long: `Show what the generated scripts will do without writing them.

Displays:
  - install: the forward actions, files first
  - uninstall: the reverse actions and the install step each one undoes
  - not reversible: actions the uninstaller leaves for manual cleanup

Use --output to change the output format (text, json, yaml).`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var (
	planFlags    assembleFlags
	outputFormat string
)

func init() {
	planFlags.register(planCmd)
	planCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := printer.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	spec, docs, err := assemble(args[0], &planFlags)
	if err != nil {
		return err
	}

	return printer.Print(cmd.OutOrStdout(), printer.BuildOutput(spec, docs), format, noColor)
}
