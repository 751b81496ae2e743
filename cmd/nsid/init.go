package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/config"
	"github.com/terassyi/nsid/internal/project"
)

var (
	initName    string
	initVersion string
	initFormat  string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter project file",
	Long: `Create a starter nsid project in a directory.

Creates:
  nsid.<format>  - project shipping <name>.exe and adding $INSTDIR to PATH
  schema.cue     - project schema for CUE tooling (cue format only)

Tool defaults from config.cue (defaultEncoding, defaultLanguages) are
written into the new project.

Usage:
  nsid init                    Initialize in current directory
  nsid init ./installer        Initialize in specified directory
  nsid init --format yaml      Write nsid.yaml instead of nsid.cue`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Application name (defaults to the directory name)")
	initCmd.Flags().StringVar(&initVersion, "version", "0.1.0", "Application version")
	initCmd.Flags().StringVar(&initFormat, "format", "cue", "Project file format (cue, yaml, json)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	name := initName
	if name == "" {
		name = filepath.Base(absDir)
	}
	spec, err := project.Scaffold(name, initVersion)
	if err != nil {
		return err
	}
	spec.Options.Encoding = cfg.DefaultEncoding
	if len(cfg.DefaultLanguages) > 0 {
		langs, err := project.NormalizeLanguages(cfg.DefaultLanguages)
		if err != nil {
			return err
		}
		spec.Options.Languages = langs
	}

	projectPath := filepath.Join(absDir, "nsid."+initFormat)
	if _, err := project.FormatOf(projectPath); err != nil {
		return err
	}
	if err := project.Create(projectPath, spec, initForce); err != nil {
		return err
	}
	cmd.Printf("Created %s\n", relativePath(absDir, projectPath))

	if project.Format(initFormat) == project.FormatCUE {
		if _, err := config.WriteSchema(absDir); err != nil {
			return err
		}
		cmd.Printf("Created %s\n", config.SchemaFileName)
	}

	cmd.Println("\nNext steps:")
	cmd.Printf("  nsid plan %s\n", filepath.Join(dir, filepath.Base(projectPath)))
	cmd.Printf("  nsid export %s\n", filepath.Join(dir, filepath.Base(projectPath)))
	return nil
}

// relativePath returns path relative to base, falling back to path.
func relativePath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
