// pkg/tf_cli/wrap.go

package tf_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_err"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap adapts a RuntimeContext-style handler to cobra's RunE, adding panic
// recovery, signal-aware cancellation, and outcome logging. Every command
// goes through here so the cleanup guarantee holds on interrupts too.
func Wrap(fn func(rc *tf_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		ctx, stop := watchSignals(context.Background())
		defer stop()

		rc := tf_io.NewContext(ctx, cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if err != nil && !tf_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
