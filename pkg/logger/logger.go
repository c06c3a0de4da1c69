// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// DefaultLogPaths are tried in order until one is writable.
var DefaultLogPaths = []string{
	"/var/log/cyberMonkey/tokenfetch.log",
	filepath.Join(os.TempDir(), "tokenfetch.log"),
}

// L returns the process-wide logger, or nil if logging was never initialized.
func L() *zap.Logger {
	return log
}

// GetLogger returns the global logger, initializing a console fallback if needed.
func GetLogger() *zap.Logger {
	if log == nil {
		InitFallback()
	}
	return log
}

// InitializeWithFallback wires a console + JSON-file tee when a writable log
// path exists, otherwise falls back to console-only logging. Never fails:
// a CLI with broken logging is worse than a CLI with console logging.
func InitializeWithFallback() {
	path, err := findWritableLogPath()
	if err != nil {
		log = NewFallbackLogger()
		installGlobals(log)
		return
	}

	consoleCfg := DefaultConsoleEncoderConfig()
	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	writer, err := getLogFileWriter(path)
	if err != nil {
		writer = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), ParseLogLevel(os.Getenv("LOG_LEVEL"))),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), writer, zap.InfoLevel),
	)

	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	installGlobals(log)
}

// installGlobals makes the logger reachable both as zap.L() and through
// otelzap.Ctx(ctx) so functions deep in the workflow can log with trace
// correlation without carrying a logger parameter.
func installGlobals(l *zap.Logger) {
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l, otelzap.WithMinLevel(zapcore.DebugLevel)))
}

// findWritableLogPath returns the first default path whose directory can be
// created and whose file can be opened with owner-only permissions.
func findWritableLogPath() (string, error) {
	var lastErr error
	for _, path := range DefaultLogPaths {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			lastErr = err
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			lastErr = err
			continue
		}
		f.Close()
		return path, nil
	}
	return "", lastErr
}

func getLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

// SafeSync flushes the global logger, ignoring the EINVAL that syncing
// a terminal produces on some platforms.
func SafeSync() {
	if log != nil {
		_ = log.Sync()
	}
}
