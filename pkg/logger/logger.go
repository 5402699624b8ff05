// Package logger holds the process wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

var (
	global   = zap.NewNop()
	globalMu sync.RWMutex
)

// SetupLogger builds a logger for the environment, installs it as the global
// one and returns it. Local and dev environments get a console encoder.
func SetupLogger(env string, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	switch env {
	case envLocal, envDev:
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
		l.Error("logger build failed, falling back to example logger", zap.Error(err))
	}

	SetLogger(l)

	return l
}

// SetLogger replaces the global logger and returns a function restoring the previous one.
func SetLogger(l *zap.Logger) func() {
	globalMu.Lock()
	prev := global
	global = l
	globalMu.Unlock()

	return func() { SetLogger(prev) }
}

func Logger() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return global
}

func Debug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger().Error(msg, fields...)
}

// Sync flushes buffered entries; call it before exit.
func Sync() {
	_ = Logger().Sync()
}
