package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/puterbatch/internal/config"
)

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger on stdout
// with the appropriate log level and sets it as the default logger.
func Setup(cfg config.LogConfig) (*slog.Logger, error) {
	logger := New(os.Stdout, cfg.Level)

	// Allows using the slog package functions directly (slog.Info, slog.Error, etc.)
	slog.SetDefault(logger)

	return logger, nil
}

// New creates a JSON logger writing to w at the named level.
// Unknown levels fall back to info with a warning.
func New(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level, w),
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a configured level name (case-insensitive) to a slog.Level.
// An unknown name yields slog.LevelInfo; the warning goes to warnTo when it
// is non-nil.
func ParseLevel(name string, warnTo io.Writer) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if warnTo != nil {
		slog.New(slog.NewTextHandler(warnTo, nil)).Warn("invalid log level configured, using default level",
			"configured_level", name,
			"default_level", "info")
	}
	return slog.LevelInfo
}
