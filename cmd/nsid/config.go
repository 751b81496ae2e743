package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/config"
	"github.com/terassyi/nsid/internal/path"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the nsid tool configuration",
	Long: `Manage config.cue, which holds CLI defaults:

  makensisPath      compiler used by nsid compile
  outputDir         where nsid export writes scripts
  defaultEncoding   encoding of projects created by nsid init
  defaultLanguages  languages of projects created by nsid init`,
}

var configShowFormat string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, paths, err := loadConfig()
		if err != nil {
			return err
		}

		switch configShowFormat {
		case outputJSON:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		default:
			data, err := cfg.ToCue()
			if err != nil {
				return err
			}
			cmd.Printf("// %s\n", paths.ConfigFile())
			cmd.Print(string(data))
			return nil
		}
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.cue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := path.Expand(configDir)
		if err != nil {
			return fmt.Errorf("failed to expand config directory: %w", err)
		}
		configPath, err := config.Write(config.DefaultConfig(), dir, configInitForce)
		if err != nil {
			return err
		}
		cmd.Printf("Created %s\n", configPath)
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema [dir]",
	Short: "Write the project schema (schema.cue) to a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		result, err := config.WriteSchema(dir)
		if err != nil {
			return err
		}
		cmd.Printf("%s: %s\n", config.SchemaFileName, result)
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVarP(&configShowFormat, "output", "o", outputText, "Output format (text, json)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config.cue")

	configCmd.AddCommand(configShowCmd, configInitCmd, configSchemaCmd)
}
