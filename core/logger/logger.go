package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	sugar = newDefault()
)

func newDefault() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init replaces the default logger with one at the given level ("debug",
// "info", "warn", "error"). Unknown levels fall back to info.
func Init(level string) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return
	}
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// SetLogger swaps the backing logger. Tests pass zap.NewNop().Sugar().
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	sugar = l
	mu.Unlock()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// keysAndValues must come in pairs; a dangling value is logged under "extra"
// so a stray error argument never panics the logger.
func normalize(args []any) []any {
	if len(args)%2 != 0 {
		args = append([]any{"extra"}, args...)
	}
	return args
}

func Debug(msg string, args ...any) { get().Debugw(msg, normalize(args)...) }
func Info(msg string, args ...any)  { get().Infow(msg, normalize(args)...) }
func Warn(msg string, args ...any)  { get().Warnw(msg, normalize(args)...) }
func Error(msg string, args ...any) { get().Errorw(msg, normalize(args)...) }

func Sync() { _ = get().Sync() }
