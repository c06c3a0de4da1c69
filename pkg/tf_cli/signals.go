// pkg/tf_cli/signals.go
//
// Signal handling for tokenfetch commands. The workflow's cleanup is hung
// off deferred calls, so the job here is only to turn SIGINT/SIGTERM into
// context cancellation and let those defers fire. A second signal forces
// exit for the case where a blocking call refuses to unwind.

package tf_cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// watchSignals returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal watcher.
func watchSignals(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		zap.L().Warn("Received termination signal, cancelling",
			zap.String("signal", sig.String()),
		)
		cancel()

		// Second signal: the operator really means it.
		if _, ok := <-sigChan; ok {
			zap.L().Error("Second signal received, exiting immediately")
			os.Exit(130)
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		close(sigChan)
		cancel()
	}
}
