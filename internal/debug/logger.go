// Package debug provides the querykit debug logger on top of log/slog.
// Logging is off until Init(true) or FromEnv with QUERYKIT_DEBUG set; while
// off every call discards its record, so callers never guard log sites.
package debug

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

var (
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled bool
	mu      sync.RWMutex
)

// Init switches debug logging on or off. Enabled logs go to stderr as
// slog text records at debug level.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if !enable {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// FromEnv enables logging when the QUERYKIT_DEBUG environment variable
// holds a truthy value ("1", "true", ...).
func FromEnv() {
	on, _ := strconv.ParseBool(os.Getenv("QUERYKIT_DEBUG"))
	Init(on)
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Logger returns the active slog.Logger.
func Logger() *slog.Logger {
	return current()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
