// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultTimeout bounds any external tool invocation that does not set its
// own deadline.
const DefaultTimeout = 30 * time.Second

// Options describes a single external tool invocation. Every call is
// attempted exactly once; callers that want the output set Capture.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
	Capture bool

	// Stdin, when non-nil, is written to the child's standard input and the
	// pipe closed. This is the only supported channel for secret material;
	// secrets must never appear in Args.
	Stdin []byte

	Logger *zap.Logger
}

// Run executes a command with structured logging and a hard deadline.
func Run(ctx context.Context, opts Options) (string, error) {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.Int("arg_count", len(opts.Args)),
	)

	cmdStr := buildCommandString(opts.Command, opts.Args...)
	log.Debug("Starting execution", zap.String("command", cmdStr))

	cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if opts.Stdin != nil {
		cmd.Stdin = bytes.NewReader(opts.Stdin)
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		span.RecordError(err)
		log.Debug("Execution failed",
			zap.String("command", cmdStr),
			zap.Error(err),
		)
		if runCtx.Err() == context.DeadlineExceeded {
			return output, cerr.Wrapf(runCtx.Err(), "%s timed out", opts.Command)
		}
		return output, cerr.Wrapf(err, "%s failed", opts.Command)
	}

	log.Debug("Execution succeeded", zap.String("command", cmdStr))
	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// CommandExists reports whether a command resolves on PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// buildCommandString renders the invocation for logs. Safe because secret
// material is only ever passed via Stdin, never Args.
func buildCommandString(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
