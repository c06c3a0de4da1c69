// pkg/gpg/gpg_test.go

package gpg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecryptArgs(t *testing.T) {
	args := decryptArgs("/tmp/in.gpg", "/tmp/out.txt")

	assert.Contains(t, args, "--batch")
	assert.Contains(t, args, "--no-symkey-cache")
	assert.Contains(t, args, "--decrypt")

	// The passphrase channel is fd 0 and nothing else.
	require.Contains(t, args, "--passphrase-fd")
	for i, arg := range args {
		if arg == "--passphrase-fd" {
			require.Less(t, i+1, len(args))
			assert.Equal(t, "0", args[i+1])
		}
	}
	assert.NotContains(t, args, "--passphrase")

	// Input and output are positional/flagged paths.
	assert.Equal(t, "/tmp/in.gpg", args[len(args)-1])
	assert.Contains(t, args, "--output")
	assert.Contains(t, args, "/tmp/out.txt")
}

// The argument vector must never carry secret material, whatever the
// passphrase is. decryptArgs does not even receive it.
func TestPassphraseNeverInArgv(t *testing.T) {
	passphrase := "p@ssw0rd-never-in-argv"
	args := decryptArgs("in.gpg", "out.txt")
	for _, arg := range args {
		assert.NotContains(t, arg, passphrase)
	}
}

func TestNewDefaults(t *testing.T) {
	tool := New()
	assert.Equal(t, DefaultTimeout, tool.Timeout)
}
