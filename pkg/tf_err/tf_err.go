// pkg/tf_err/tf_err.go
//
// Error classification shared across tokenfetch commands. Workflow steps
// return typed errors from pkg/workflow; this package only decides how they
// surface: expected-user-error marking (no stack trace dump) and the
// process exit code.

package tf_err

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// UserError marks an error as expected and user-fixable: bad passphrase,
// missing tool, unreachable URL. These are reported as a single diagnostic
// line instead of a stack trace.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// GetExitCode maps an error to the process exit status. The contract is
// fixed: zero on full success, one on any failure.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// PrintDiagnostic writes the single-line diagnostic the workflow contract
// promises on stderr, and logs the structured form.
func PrintDiagnostic(err error) {
	if err == nil {
		return
	}
	if IsExpectedUserError(err) {
		zap.L().Warn("Command failed", zap.Error(err))
	} else {
		zap.L().Error("Command failed", zap.Error(err))
	}
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", firstLine(err.Error()))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ExtractSummary extracts a concise error summary from captured tool output.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "No output provided."
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "error") ||
			strings.Contains(lowerLine, "failed") ||
			strings.Contains(lowerLine, "cannot") ||
			strings.Contains(lowerLine, "fatal") ||
			strings.Contains(lowerLine, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return "Unknown error."
}
