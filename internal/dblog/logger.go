// Package dblog is the structured logging facility shared by the pool,
// manager and configwatch packages and the smartdbctl command. It wraps log/slog behind a swappable,
// mutex-guarded package-level logger so call sites never touch a handler
// directly.
package dblog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger  *slog.Logger
	enabled bool
	mu      sync.RWMutex
)

func init() {
	// Structured logging is on by default at Info level; Init can widen
	// it to Debug or silence it entirely.
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	enabled = true
}

// Init reconfigures the package logger. debug widens the level to Debug;
// when enable is false all log output is discarded.
func Init(enable bool, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable

	if !enable {
		opts := &slog.HandlerOptions{Level: slog.LevelError + 1}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
		return
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Enabled reports whether logging is currently turned on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, args ...any) { current().Debug(msg, args...) }
func Info(msg string, args ...any)  { current().Info(msg, args...) }
func Warn(msg string, args ...any)  { current().Warn(msg, args...) }
func Error(msg string, args ...any) { current().Error(msg, args...) }

// With returns a logger scoped to the given attributes, e.g. a pool name
// or trace id, so call sites can build a request-scoped logger once and
// reuse it.
func With(args ...any) *slog.Logger { return current().With(args...) }

// Logger returns the current underlying slog.Logger.
func Logger() *slog.Logger { return current() }
