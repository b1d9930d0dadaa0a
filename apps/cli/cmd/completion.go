package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for gqltester.

Bash:
  $ source <(gqltester completion bash)

Zsh:
  $ gqltester completion zsh > "${fpath[1]}/_gqltester"

Fish:
  $ gqltester completion fish > ~/.config/fish/completions/gqltester.fish

PowerShell:
  PS> gqltester completion powershell | Out-String | Invoke-Expression

Suite names complete from the tests directory.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeSuites suggests suite names for commands taking suite selectors.
// skip is the number of leading positional arguments that are not suites.
func completeSuites(skip int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) < skip {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg, err := loadConfig(nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names, err := suite.List(cfg.TestsDir)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
