package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Init installs the process-wide slog handler. Level is read from the
// LOG_LEVEL environment variable (debug, info, warn, error) and defaults
// to info.
func Init() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      levelFromEnv(),
		TimeFormat: time.Kitchen,
	})

	slog.SetDefault(slog.New(handler))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
