// pkg/tf_err/tf_err_test.go

package tf_err

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewExpectedError(t *testing.T) {
	assert.Nil(t, NewExpectedError(nil))

	base := cerr.New("gpg not installed")
	wrapped := NewExpectedError(base)
	assert.True(t, IsExpectedUserError(wrapped))
	assert.Equal(t, "gpg not installed", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
}

func TestIsExpectedUserErrorThroughWrapping(t *testing.T) {
	base := NewExpectedError(cerr.New("boom"))
	wrapped := cerr.Wrap(base, "context")
	assert.True(t, IsExpectedUserError(wrapped))
	assert.False(t, IsExpectedUserError(cerr.New("plain")))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, 0, GetExitCode(nil))
	assert.Equal(t, 1, GetExitCode(cerr.New("any failure")))
	assert.Equal(t, 1, GetExitCode(NewExpectedError(cerr.New("user failure"))))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo\nthree"))
	assert.Equal(t, "single", firstLine("single"))
	assert.Equal(t, "", firstLine("\ntrailing"))
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "empty output",
			output: "",
			want:   "No output provided.",
		},
		{
			name:   "picks error lines",
			output: "gpg: starting\ngpg: decryption failed: Bad session key\ndone",
			want:   "gpg: decryption failed: Bad session key",
		},
		{
			name:   "falls back to first nonempty line",
			output: "\n\nall fine here\n",
			want:   "all fine here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, 2))
		})
	}
}

func TestExtractSummaryCapsCandidates(t *testing.T) {
	output := "error: one\nerror: two\nerror: three"
	assert.Equal(t, "error: one - error: two", ExtractSummary(output, 2))
}
