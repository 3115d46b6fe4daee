package utils

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	loggerOnce sync.Once
	logger     *slog.Logger
)

// InitLogger sets up the process-wide logger. Level is controlled by
// MINGJING_LOG_LEVEL (debug, info, warn, error); defaults to info.
func InitLogger() {
	loggerOnce.Do(func() {
		level := slog.LevelInfo
		switch strings.ToLower(strings.TrimSpace(os.Getenv("MINGJING_LOG_LEVEL"))) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		handler := tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

// GetLogger returns the process-wide logger, initializing it if needed.
func GetLogger() *slog.Logger {
	InitLogger()
	return logger
}
