package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output keeps lines
// machine-parseable for the log pipeline.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
