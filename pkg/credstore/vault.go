// pkg/credstore/vault.go

package credstore

import (
	"context"
	"strings"

	cerr "github.com/cockroachdb/errors"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	// vaultMount is the KVv2 mount tokenfetch entries live under.
	vaultMount = "secret"

	// vaultPathPrefix namespaces tokenfetch entries within the mount.
	vaultPathPrefix = "tokenfetch/"

	// vaultField is the key holding the secret value inside the KV entry.
	vaultField = "value"
)

type vaultStore struct {
	client *vaultapi.Client
}

// NewVaultStore builds a Vault-backed Store. Address and token come from the
// standard VAULT_ADDR / VAULT_TOKEN environment, same as the vault CLI.
func NewVaultStore() (Store, error) {
	client, err := vaultapi.NewClient(vaultapi.DefaultConfig())
	if err != nil {
		return nil, &UnavailableError{Backend: BackendVault, Cause: err}
	}
	return &vaultStore{client: client}, nil
}

func (s *vaultStore) Lookup(ctx context.Context, entry string) ([]byte, error) {
	logger := otelzap.Ctx(ctx)
	path := vaultPathPrefix + entry
	logger.Debug("Looking up Vault entry",
		zap.String("mount", vaultMount),
		zap.String("path", path),
	)

	secret, err := s.client.KVv2(vaultMount).Get(ctx, path)
	if err != nil {
		if cerr.Is(err, vaultapi.ErrSecretNotFound) {
			return nil, ErrNotFound
		}
		return nil, &UnavailableError{Backend: BackendVault, Cause: err}
	}

	raw, ok := secret.Data[vaultField]
	if !ok {
		return nil, ErrNotFound
	}
	value, ok := raw.(string)
	if !ok {
		return nil, cerr.Newf("vault entry %s field %q is not a string", path, vaultField)
	}
	if strings.TrimSpace(value) == "" {
		return nil, ErrEmptySecret
	}
	return []byte(value), nil
}
