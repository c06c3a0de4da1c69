// Package gpg drives the external gpg binary for symmetric decryption.
// The passphrase travels on the child's stdin (--passphrase-fd 0) and is
// never placed in the argument vector, where it would be visible to every
// process on the host.
package gpg

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Binary is the decryption tool the workflow preflight checks for.
const Binary = "gpg"

// DefaultTimeout bounds one decrypt invocation.
const DefaultTimeout = 10 * time.Second

// Tool decrypts files by shelling out to gpg.
type Tool struct {
	Timeout time.Duration
}

// New returns a Tool with the default deadline.
func New() *Tool {
	return &Tool{Timeout: DefaultTimeout}
}

// Decrypt decrypts ciphertextPath into outputPath using the passphrase.
// Output goes through --output rather than stdout so gpg itself writes the
// plaintext with no shell redirection involved.
func (t *Tool) Decrypt(ctx context.Context, ciphertextPath, outputPath string, passphrase []byte) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Decrypting ciphertext",
		zap.String("input", ciphertextPath),
		zap.String("output", outputPath),
	)

	output, err := execute.Run(ctx, execute.Options{
		Command: Binary,
		Args:    decryptArgs(ciphertextPath, outputPath),
		Stdin:   passphrase,
		Capture: true,
		Timeout: t.Timeout,
	})
	if err != nil {
		summary := tf_err.ExtractSummary(output, 2)
		return cerr.Wrapf(err, "gpg decryption failed: %s", summary)
	}
	return nil
}

// decryptArgs builds the gpg argument vector. Loopback pinentry plus
// --passphrase-fd 0 keeps the exchange non-interactive, and
// --no-symkey-cache stops gpg from remembering the session key in its
// private keyring.
func decryptArgs(ciphertextPath, outputPath string) []string {
	return []string{
		"--quiet", "--batch", "--yes",
		"--pinentry-mode", "loopback",
		"--no-symkey-cache",
		"--decrypt",
		"--passphrase-fd", "0",
		"--output", outputPath,
		ciphertextPath,
	}
}
