// Package credstore abstracts the OS-level secret storage the bootstrap
// workflow reads its GPG passphrase from. The workflow only sees the Store
// interface; backends cover the OS keyring (default), HashiCorp Vault, and
// an interactive terminal prompt for hosts without a keyring daemon.
package credstore

import (
	"context"
	"fmt"

	cerr "github.com/cockroachdb/errors"
)

// Service is the keyring service name all tokenfetch entries live under.
const Service = "tokenfetch"

// Store looks up a named secret. Implementations return ErrNotFound when the
// entry does not exist, ErrEmptySecret when it exists with a zero-length
// value, and an UnavailableError when the backing store itself cannot be
// reached.
type Store interface {
	Lookup(ctx context.Context, entry string) ([]byte, error)
}

var (
	// ErrNotFound means the store is healthy but has no such entry.
	ErrNotFound = cerr.New("credential store entry not found")

	// ErrEmptySecret means the entry exists but holds a zero-length value.
	ErrEmptySecret = cerr.New("credential store entry is empty")
)

// UnavailableError means the credential store itself could not be queried:
// no keyring daemon, unreachable Vault, closed terminal.
type UnavailableError struct {
	Backend string
	Cause   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("credential store (%s) unavailable: %v", e.Backend, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// IsUnavailable reports whether err indicates an unreachable store.
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return cerr.As(err, &e)
}

// Backend names accepted by New.
const (
	BackendKeyring = "keyring"
	BackendVault   = "vault"
	BackendPrompt  = "prompt"
)

// New constructs the configured Store backend.
func New(backend string) (Store, error) {
	switch backend {
	case BackendKeyring, "":
		return NewKeyringStore(), nil
	case BackendVault:
		return NewVaultStore()
	case BackendPrompt:
		return NewPromptStore(), nil
	default:
		return nil, cerr.Newf("unknown credential store backend %q", backend)
	}
}
