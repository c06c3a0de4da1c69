package tf_io

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	// MaxPassphraseLength defines the maximum allowed passphrase length
	MaxPassphraseLength = 256
)

// controlCharRegex matches dangerous control characters
var controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)

// InputValidationError represents input validation errors
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Reason)
}

// ValidateSecretInput checks a secret value read from a terminal or store:
// non-empty, bounded, valid UTF-8, no embedded control characters. The value
// itself is never logged or included in the returned error.
func ValidateSecretInput(input []byte, fieldName string) error {
	trimmed := strings.TrimSpace(string(input))
	if trimmed == "" {
		return &InputValidationError{Field: fieldName, Reason: "cannot be empty"}
	}
	if len(input) > MaxPassphraseLength {
		return &InputValidationError{
			Field:  fieldName,
			Reason: fmt.Sprintf("too long (%d bytes, max %d)", len(input), MaxPassphraseLength),
		}
	}
	if !utf8.Valid(input) {
		return &InputValidationError{Field: fieldName, Reason: "contains invalid UTF-8 sequences"}
	}
	if controlCharRegex.Match(input) {
		return &InputValidationError{Field: fieldName, Reason: "contains control characters"}
	}
	return nil
}

// ErrNoTerminal means secure input was requested without a controlling
// terminal to read it from.
var ErrNoTerminal = fmt.Errorf("stdin is not a terminal; cannot prompt for passphrase")

// ErrEmptyInput means the operator submitted nothing at the prompt.
var ErrEmptyInput = fmt.Errorf("empty passphrase provided")

// PromptSecurePassword reads a passphrase from the terminal without echo.
// Refuses to run when stdin is not a terminal: a piped passphrase would end
// up in shell history or process output somewhere.
func PromptSecurePassword(ctx context.Context, prompt string) ([]byte, error) {
	logger := otelzap.Ctx(ctx)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoTerminal
	}

	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		logger.Error("Failed to read passphrase from terminal", zap.Error(err))
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	trimmed := []byte(strings.TrimSpace(string(pw)))
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ValidateSecretInput(trimmed, "passphrase"); err != nil {
		return nil, err
	}
	return trimmed, nil
}
