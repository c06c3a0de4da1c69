// cmd/secure/wipe.go

package secure

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/shredder"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_cli"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_err"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SecureCmd groups secret-hygiene operations.
var SecureCmd = &cobra.Command{
	Use:   "secure",
	Short: "Secret-hygiene operations",
}

var wipeCmd = &cobra.Command{
	Use:   "wipe FILE...",
	Short: "Securely erase files (overwrite, then remove)",
	Long: `Wipe applies the same secure-erase primitive the fetch workflow uses to
its own temp files: shred(1) when available, otherwise a multi-pass
in-process overwrite, with plain removal as the last resort.`,
	Args: cobra.MinimumNArgs(1),
	RunE: tf_cli.Wrap(runWipe),
}

func init() {
	SecureCmd.AddCommand(wipeCmd)
}

func runWipe(rc *tf_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	s := shredder.New()

	failed := 0
	for _, path := range args {
		if err := s.Erase(rc.Ctx, path); err != nil {
			rc.Log.Warn("Failed to wipe file", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		fmt.Printf("wiped %s\n", path)
	}

	if failed > 0 {
		return tf_err.NewExpectedError(cerr.Newf("failed to wipe %d of %d files", failed, len(args)))
	}
	return nil
}
