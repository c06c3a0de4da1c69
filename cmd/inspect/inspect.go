// cmd/inspect/inspect.go

package inspect

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_cli"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_err"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/workflow"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InspectCmd groups read-only diagnostics.
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect tokenfetch state without running the workflow",
}

var inspectConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Resolves the configuration exactly as fetch would (embedded defaults,
tokenfetch.yaml, TOKENFETCH_* environment) and prints the result. The
configuration holds entry names and URLs only; no secret material.`,
	Args: cobra.NoArgs,
	RunE: tf_cli.Wrap(runInspectConfig),
}

func init() {
	InspectCmd.AddCommand(inspectConfigCmd)
}

func runInspectConfig(rc *tf_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg, err := workflow.LoadConfig()
	if err != nil {
		return tf_err.NewExpectedError(err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
