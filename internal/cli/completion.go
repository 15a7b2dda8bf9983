package cli

import (
	"github.com/spf13/cobra"
)

// completionShells lists the shells a completion script can be generated for.
var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a shell completion script for zipcities.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell. Path flags complete
to matching files: --input to .csv, --output to .json and --config to .toml.

  source <(zipcities completion bash)
  zipcities completion zsh > "${fpath[1]}/_zipcities"
  zipcities completion fish > ~/.config/fish/completions/zipcities.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// registerPathCompletion restricts file completion of the path flags to
// their expected extensions.
func registerPathCompletion(root *cobra.Command) {
	_ = root.MarkFlagFilename("input", "csv")
	_ = root.MarkFlagFilename("output", "json")
	_ = root.MarkPersistentFlagFilename("config", "toml")
}
