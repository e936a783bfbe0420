// Package logger holds the process-wide zap logger used by every layer
// of the booking service.  cmd/server replaces the default with one
// built from APP_ENV once configuration is loaded.
package logger

import (
	"os"      // LOG_LEVEL override
	"strings" // environment name matching

	"go.uber.org/zap"         // structured logger
	"go.uber.org/zap/zapcore" // encoders and levels
)

// log starts as a development logger so packages can log before
// cmd/server calls Set.
var log = NewLogger("development")

// NewLogger builds the logger for env.  "production" and "prod" get
// JSON lines with an ISO8601 "timestamp" field at info level; any other
// environment gets a coloured console logger at debug level.  A valid
// LOG_LEVEL (debug, info, warn, error) overrides the level either way.
// A build failure yields a no-op logger rather than a nil one.
func NewLogger(env string) *zap.Logger {
	cfg := consoleConfig()
	if isProduction(env) {
		cfg = jsonConfig()
	}
	if lvl, ok := levelFromEnv(); ok {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func isProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return true
	}
	return false
}

func jsonConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func consoleConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// levelFromEnv parses LOG_LEVEL; unset or unparsable values report false.
func levelFromEnv() (zapcore.Level, bool) {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return zapcore.InfoLevel, false
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

// Get returns the current logger.
func Get() *zap.Logger { return log }

// Set replaces the process logger; nil is ignored.
func Set(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

// With returns a child logger carrying fields, e.g. a request id.
func With(fields ...zap.Field) *zap.Logger { return log.With(fields...) }

// Sync flushes buffered entries; call it before exit.
func Sync() error { return log.Sync() }
