// pkg/credstore/prompt.go

package credstore

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	cerr "github.com/cockroachdb/errors"
)

// promptStore asks the operator for the secret on the controlling terminal.
// This is the original getpass behavior for hosts without a keyring daemon,
// kept as an explicit backend so a missing keyring surfaces as
// CredentialStoreUnavailable instead of silently prompting.
type promptStore struct{}

// NewPromptStore returns the interactive terminal backend.
func NewPromptStore() Store {
	return &promptStore{}
}

func (s *promptStore) Lookup(ctx context.Context, entry string) ([]byte, error) {
	value, err := tf_io.PromptSecurePassword(ctx, fmt.Sprintf("Enter passphrase for %q: ", entry))
	var validation *tf_io.InputValidationError
	switch {
	case err == nil:
		return value, nil
	case cerr.Is(err, tf_io.ErrEmptyInput):
		return nil, ErrEmptySecret
	case cerr.As(err, &validation):
		return nil, err
	default:
		return nil, &UnavailableError{Backend: BackendPrompt, Cause: err}
	}
}
