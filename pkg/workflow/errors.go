// pkg/workflow/errors.go
//
// The bootstrap error taxonomy. Every step failure maps to exactly one of
// these; all are terminal and none are retried.

package workflow

import (
	"fmt"

	cerr "github.com/cockroachdb/errors"
)

// ToolMissingError means a required external tool is not on PATH. Raised in
// preflight, before any network or store access.
type ToolMissingError struct {
	Name string
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("%s not installed", e.Name)
}

// SecretNotFoundError means the credential store has no entry under the
// configured name.
type SecretNotFoundError struct {
	Entry string
}

func (e *SecretNotFoundError) Error() string {
	return fmt.Sprintf("no credential store entry named %q", e.Entry)
}

// ErrSecretEmpty means the credential store returned a zero-length value.
var ErrSecretEmpty = cerr.New("credential store returned an empty value")

// ErrEmptySecret means decryption succeeded but the plaintext held no token.
var ErrEmptySecret = cerr.New("decrypted token is empty")

// DownloadError means an HTTP fetch failed: transport error or non-2xx.
type DownloadError struct {
	URL   string
	Cause error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Cause)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// DecryptionError means gpg rejected the ciphertext or the passphrase.
type DecryptionError struct {
	Cause error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %v", e.Cause)
}

func (e *DecryptionError) Unwrap() error {
	return e.Cause
}
