package main

import (
	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/project"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project...>",
	Short: "Validate project files",
	Long: `Validate nsid project files.

Checks for:
  - Syntax and schema errors
  - Invalid actions and install options
  - Text the chosen script encoding cannot represent

Warnings are printed but do not fail validation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	for _, projectPath := range args {
		cmd.Printf("Validating %s\n", projectPath)

		spec, err := project.Load(projectPath)
		if err != nil {
			return err
		}
		result := spec.Validate()
		for _, w := range result.Warnings {
			cmd.Printf("  warning: %s\n", w)
		}
		if err := result.Err(spec.Name); err != nil {
			return err
		}

		cmd.Printf("  %s %s: %d file(s), %d action(s)\n", spec.Name, spec.Version, len(spec.Files), spec.Actions.Len())
	}

	cmd.Println("Validation successful")
	return nil
}
