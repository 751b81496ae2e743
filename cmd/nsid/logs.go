package main

import (
	"github.com/spf13/cobra"
	nsidlog "github.com/terassyi/nsid/internal/log"
)

var logsCmd = &cobra.Command{
	Use:   "logs [project]",
	Short: "Show makensis output of failed compiles",
	Long: `Show the makensis output saved by the most recent failed compile.

Without arguments, lists the logs of the latest session. With a project
name, prints that project's log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

var logsList bool

func init() {
	logsCmd.Flags().BoolVar(&logsList, "list", false, "List all log sessions")
}

func runLogs(cmd *cobra.Command, args []string) error {
	_, paths, err := loadConfig()
	if err != nil {
		return err
	}

	sessions, err := nsidlog.ListSessions(paths.LogsDir())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		cmd.Println("No compile logs found.")
		return nil
	}

	if logsList {
		for _, s := range sessions {
			cmd.Printf("%s  %s\n", s.ID, s.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	latest := sessions[0]
	if len(args) == 1 {
		content, err := nsidlog.ReadProjectLog(latest.Dir, args[0])
		if err != nil {
			return err
		}
		cmd.Print(content)
		return nil
	}

	logs, err := nsidlog.ReadSessionLogs(latest.Dir)
	if err != nil {
		return err
	}
	cmd.Printf("Session %s:\n", latest.ID)
	for _, l := range logs {
		cmd.Printf("  %s\n", l.Name)
	}
	return nil
}
