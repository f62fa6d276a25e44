package logger

import (
	"log/slog"
	"os"
)

// New builds a JSON slog logger at the given level. The logger is passed
// explicitly to components instead of living in a package global.
func New(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
