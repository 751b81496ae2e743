package main

import (
	"github.com/spf13/cobra"
	"github.com/terassyi/nsid/internal/checksum"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Check exported scripts against SHA256SUMS",
	Long: `Check every file listed in <dir>/SHA256SUMS against its recorded
digest. dir defaults to outputDir in config.cue.

The sums file is written by nsid export --checksums.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	_, paths, err := loadConfig()
	if err != nil {
		return err
	}
	dir := paths.OutputDir()
	if len(args) == 1 {
		dir = args[0]
	}

	entries, err := checksum.VerifySumsFile(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		cmd.Printf("%s: OK\n", e.Name)
	}
	return nil
}
