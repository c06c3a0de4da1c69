// pkg/workflow/tempfile.go

package workflow

import (
	"os"

	cerr "github.com/cockroachdb/errors"
)

// TempPrefix marks every transient artifact so post-run scans can assert
// none survived.
const TempPrefix = "tokenfetch-"

// newTempFile creates an empty owner-only temp file and returns its path.
// The file is created up front, before any secret touches it, so cleanup
// has a stable path to erase whatever happens later.
func newTempFile(dir, suffix string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, TempPrefix+"*"+suffix)
	if err != nil {
		return "", cerr.Wrap(err, "create temp file")
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", cerr.Wrap(err, "close temp file")
	}
	// os.CreateTemp already uses 0600; chmod anyway in case of a wider umask
	// interaction on exotic platforms.
	if err := os.Chmod(name, 0600); err != nil {
		os.Remove(name)
		return "", cerr.Wrap(err, "restrict temp file permissions")
	}
	return name, nil
}
