/* cmd/root.go */

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/cmd/fetch"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/cmd/inspect"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/cmd/secure"
)

// RootCmd is the base command for tokenfetch.
var RootCmd = &cobra.Command{
	Use:   "tokenfetch",
	Short: "One-shot credential bootstrap for private repository access",
	Long: `tokenfetch retrieves a GPG-encrypted access token, decrypts it with a
passphrase held in the OS credential store, and uses the token to download
files from a private repository. Every transient secret artifact is securely
erased before exit, on success and failure alike.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	for _, subCmd := range []*cobra.Command{
		fetch.FetchCmd,
		inspect.InspectCmd,
		secure.SecureCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute runs the CLI and returns the terminal error, if any. Exit-code
// mapping happens in main so deferred cleanup is never skipped by os.Exit.
func Execute() error {
	RegisterCommands()
	return RootCmd.Execute()
}
