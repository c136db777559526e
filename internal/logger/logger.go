// Package logger holds the registry's process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is shared by the store, cache, services and request middleware.
// It discards everything until Initialize runs, so tests need no setup.
var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// Initialize switches Log to JSON output at APP_LOG_LEVEL. It is called once
// from run before the store is opened. Entries carry service=user-registry.
func Initialize(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": "user-registry"}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = logger.Sugar()
	return nil
}

// Sync flushes Log on shutdown. Sync errors on stderr are ignored.
func Sync() {
	_ = Log.Sync()
}
