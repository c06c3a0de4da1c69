// pkg/credstore/keyring.go

package credstore

import (
	"context"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// keyringStore reads entries from the OS keyring: Keychain on macOS,
// Credential Manager on Windows, Secret Service over D-Bus on Linux.
type keyringStore struct{}

// NewKeyringStore returns the default OS keyring backend.
func NewKeyringStore() Store {
	return &keyringStore{}
}

func (s *keyringStore) Lookup(ctx context.Context, entry string) ([]byte, error) {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Looking up keyring entry",
		zap.String("service", Service),
		zap.String("entry", entry),
	)

	value, err := keyring.Get(Service, entry)
	switch {
	case cerr.Is(err, keyring.ErrNotFound):
		return nil, ErrNotFound
	case cerr.Is(err, keyring.ErrUnsupportedPlatform):
		return nil, &UnavailableError{Backend: BackendKeyring, Cause: err}
	case err != nil:
		// go-keyring reports daemon/transport problems as opaque errors;
		// a missing entry is the only case it types.
		return nil, &UnavailableError{Backend: BackendKeyring, Cause: err}
	}

	if strings.TrimSpace(value) == "" {
		return nil, ErrEmptySecret
	}
	return []byte(value), nil
}
