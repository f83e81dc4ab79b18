package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Production gets JSON,
// everything else text for readability.
func New(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
