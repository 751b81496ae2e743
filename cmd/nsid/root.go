package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/config"
	"github.com/terassyi/nsid/internal/path"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var (
	configDir string
	logLevel  string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "nsid",
	Short: "NSIS installer script generator",
	Long: `nsid generates NSIS installer and uninstaller scripts from a
declarative project file (CUE, YAML or JSON).

The uninstaller is derived from the install actions on every export:
each action is undone in reverse order, list variables such as PATH
lose exactly the fragment the installer added, and actions that cannot
be undone are reported instead of guessed at.

  nsid init                 Create a starter project
  nsid plan nsid.cue        Show install and uninstall plans
  nsid export nsid.cue      Write the .nsi script
  nsid compile nsid.cue     Export and run makensis`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if noColor {
			color.NoColor = true
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(logLevel)})))
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultConfigDir, "Directory holding config.cue")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		versionCmd,
		initCmd,
		validateCmd,
		planCmd,
		exportCmd,
		compileCmd,
		verifyCmd,
		logsCmd,
		doctorCmd,
		configCmd,
		completionCmd,
	)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// loadConfig reads config.cue from --config-dir.
func loadConfig() (*config.Config, *path.Paths, error) {
	dir, err := path.Expand(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to expand config directory: %w", err)
	}
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, nil, err
	}
	paths, err := path.NewFromConfig(cfg, dir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, paths, nil
}
