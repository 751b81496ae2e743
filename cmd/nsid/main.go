package main

import (
	"os"

	"github.com/terassyi/nsid/internal/errors"
	"github.com/terassyi/nsid/internal/ui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		formatter := errors.NewFormatter(os.Stderr, noColor || !ui.IsTerminal(os.Stderr))
		output := formatter.Format(err)
		os.Stderr.WriteString(output)
		os.Exit(1)
	}
}
