// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. It starts as a no-op so packages can log
// before initialization; InitLogger and SetGlobal replace it.
var L = zap.NewNop()

// InitLogger installs a plain production logger as the bootstrap logger for
// use before configuration is loaded.
func InitLogger() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("init bootstrap logger: %v", err))
	}
	L = logger
}

// SetGlobal installs the configured logger as L and as zap's globals.
func SetGlobal(logger *zap.Logger) {
	if logger == nil {
		return
	}
	L = logger
	zap.ReplaceGlobals(logger)
}

// New builds a zap.Logger for the given environment ("development" gets a
// colored console encoder, anything else the production JSON encoder) at the
// given level ("debug", "info", "warn", "error").
func New(environment, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = false
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
