// cmd/fetch/fetch.go

package fetch

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_cli"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_err"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/workflow"
	"github.com/spf13/cobra"
)

// FetchCmd runs the bootstrap workflow end to end.
var FetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Retrieve the access token and download the private artifacts",
	Long: `Fetch runs the full bootstrap: passphrase lookup, encrypted token
download, decryption, authenticated artifact downloads, and secure cleanup.
Behavior is determined by the embedded configuration, an optional
tokenfetch.yaml, and TOKENFETCH_* environment variables; there are no
flags to pass secrets through.`,
	Args: cobra.NoArgs,
	RunE: tf_cli.Wrap(runFetch),
}

func runFetch(rc *tf_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg, err := workflow.LoadConfig()
	if err != nil {
		return tf_err.NewExpectedError(err)
	}

	wf, err := workflow.New(cfg)
	if err != nil {
		return tf_err.NewExpectedError(err)
	}

	if err := wf.Run(rc); err != nil {
		// Every taxonomy error is user-actionable: wrong passphrase, missing
		// tool, unreachable URL. No stack trace, one diagnostic line.
		return tf_err.NewExpectedError(err)
	}

	// The single stdout line the contract promises on success.
	fmt.Println("✓ Successfully downloaded files")
	return nil
}
