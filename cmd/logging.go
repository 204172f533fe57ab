package cmd

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level string // debug, info, warn, error
	JSON  bool   // JSON lines instead of the console output
}

// parseLevel returns the zerolog level, info for unknown levels.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// NewLogger creates a logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.JSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

// SetGlobalLogger sets the logger used by every package.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
