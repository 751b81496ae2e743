package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a completion script for bash, zsh, fish or powershell",
	Long: `Print a shell completion script for nsid to stdout. Completion covers
subcommands, flags, and project file names for export, compile, plan and validate.

Load it into the current shell:
  source <(nsid completion bash)
  nsid completion fish | source
  nsid completion powershell | Out-String | Invoke-Expression

Or install it for zsh:
  nsid completion zsh > "${fpath[1]}/_nsid"`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return rootCmd.GenBashCompletionV2(out, true)
		}
	},
}

// projectExts are the project file extensions the loader accepts.
var projectExts = []string{"json", "yaml", "yml", "cue"}

func completeProjectFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return projectExts, cobra.ShellCompDirectiveFilterFileExt
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, compileCmd, planCmd, validateCmd} {
		c.ValidArgsFunction = completeProjectFiles
	}
}
