package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/script"
)

// VersionInfo describes the nsid build and the scripts it generates.
type VersionInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildDate string   `json:"buildDate"`
	GoVersion string   `json:"goVersion"`
	Platform  string   `json:"platform"`
	Encodings []string `json:"encodings"`
}

func newVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Encodings: []string{string(script.UTF8), string(script.CP1252)},
	}
}

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the nsid build and supported script encodings",
	Long: `Show the nsid release, the commit and date it was built from, and the
script encodings it can write (choose one with options.encoding or --encoding).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := newVersionInfo()
		if versionFormat == outputJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		cmd.Printf("nsid version %s (%s, built %s)\n", info.Version, info.Commit, info.BuildDate)
		cmd.Printf("  go:         %s %s\n", info.GoVersion, info.Platform)
		cmd.Printf("  encodings:  %v\n", info.Encodings)
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionFormat, "output", "o", outputText, "Output format (text, json)")
}
