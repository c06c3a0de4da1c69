/* cmd/root_test.go */

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterCommands(t *testing.T) {
	RegisterCommands()

	names := make(map[string]bool)
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"fetch", "inspect", "secure"} {
		assert.True(t, names[want], "expected subcommand %q", want)
	}
}

func TestRootSilencesCobraErrorOutput(t *testing.T) {
	// Diagnostics are printed once by main, not by cobra.
	assert.True(t, RootCmd.SilenceErrors)
	assert.True(t, RootCmd.SilenceUsage)
}
