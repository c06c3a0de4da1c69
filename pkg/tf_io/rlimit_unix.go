//go:build unix

package tf_io

import (
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// DisableCoreDumps sets RLIMIT_CORE to zero so a crash cannot write secret
// material into a core file. Best effort: a failure is logged, not fatal.
func DisableCoreDumps() {
	limit := unix.Rlimit{Cur: 0, Max: 0}
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &limit); err != nil {
		zap.L().Warn("Failed to disable core dumps", zap.Error(err))
	}
}
