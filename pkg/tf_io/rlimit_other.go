//go:build !unix

package tf_io

// DisableCoreDumps is a no-op on platforms without RLIMIT_CORE.
func DisableCoreDumps() {}
