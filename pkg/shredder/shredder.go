// Package shredder destroys transient secret material: files via shred(1)
// with an in-process multi-pass overwrite fallback, byte slices via
// zeroization. Plain deletion is the last resort only, an unlinked file's
// blocks are trivially recoverable.
package shredder

import (
	"context"
	"crypto/rand"
	"os"
	"strconv"
	"time"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Binary is the external secure-delete tool tried first.
const Binary = "shred"

const (
	// DefaultPasses matches the original bootstrap's shred -n 3.
	DefaultPasses = 3

	// DefaultTimeout bounds one shred invocation; these files are small.
	DefaultTimeout = 5 * time.Second
)

// Shredder erases files beyond casual recovery.
type Shredder struct {
	Passes  int
	Timeout time.Duration

	// SkipTool forces the in-process overwrite path. Used on hosts without
	// shred(1) and by tests that need deterministic behavior.
	SkipTool bool
}

// New returns a Shredder with the default passes and deadline.
func New() *Shredder {
	return &Shredder{Passes: DefaultPasses, Timeout: DefaultTimeout}
}

// Erase destroys a single file. Missing files are not an error: cleanup
// runs on every exit path, including ones where the file never got written.
func (s *Shredder) Erase(ctx context.Context, path string) error {
	logger := otelzap.Ctx(ctx)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if !s.SkipTool && execute.CommandExists(Binary) {
		_, err := execute.Run(ctx, execute.Options{
			Command: Binary,
			Args:    []string{"-fz", "-n", strconv.Itoa(s.passes()), "-u", path},
			Timeout: s.Timeout,
		})
		if err == nil {
			logger.Debug("Shredded file", zap.String("path", path))
			return nil
		}
		logger.Warn("shred failed, falling back to in-process overwrite",
			zap.String("path", path),
			zap.Error(err),
		)
	}

	if err := overwriteFile(path, s.passes()); err != nil {
		logger.Warn("Overwrite failed, falling back to plain removal",
			zap.String("path", path),
			zap.Error(err),
		)
		if rmErr := os.Remove(path); rmErr != nil {
			return cerr.CombineErrors(err, rmErr)
		}
		return nil
	}
	if err := os.Remove(path); err != nil {
		return cerr.Wrapf(err, "remove %s after overwrite", path)
	}

	logger.Debug("Overwrote and removed file", zap.String("path", path))
	return nil
}

// EraseAll erases every path, continuing past individual failures and
// returning them aggregated. Callers treat the result as advisory: cleanup
// problems are warnings, never a workflow verdict.
func (s *Shredder) EraseAll(ctx context.Context, paths ...string) error {
	var result *multierror.Error
	for _, path := range paths {
		if err := s.Erase(ctx, path); err != nil {
			result = multierror.Append(result, cerr.Wrapf(err, "erase %s", path))
		}
	}
	return result.ErrorOrNil()
}

// Zero wipes a byte slice in place. Go gives no stronger guarantee against
// copies made by the runtime, but this removes the canonical buffer.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (s *Shredder) passes() int {
	if s.Passes <= 0 {
		return DefaultPasses
	}
	return s.Passes
}

// overwriteFile rewrites the file's bytes in place: random passes followed
// by a final zero pass, each synced to disk before the next.
func overwriteFile(path string, passes int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return cerr.Wrap(err, "open for overwrite")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return cerr.Wrap(err, "stat for overwrite")
	}
	size := info.Size()
	if size == 0 {
		return nil
	}

	buf := make([]byte, size)
	for pass := 0; pass < passes; pass++ {
		if pass == passes-1 {
			for i := range buf {
				buf[i] = 0
			}
		} else {
			if _, err := rand.Read(buf); err != nil {
				return cerr.Wrap(err, "generate overwrite data")
			}
		}
		if _, err := f.WriteAt(buf, 0); err != nil {
			return cerr.Wrapf(err, "overwrite pass %d", pass+1)
		}
		if err := f.Sync(); err != nil {
			return cerr.Wrapf(err, "sync pass %d", pass+1)
		}
	}
	return nil
}
