package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide structured logger. Output is JSON on
// stdout; level comes from config (debug/info/warn/error).
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
