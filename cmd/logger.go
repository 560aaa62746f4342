package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"delivery-tracker/internal/pkg/errs"

	"github.com/labstack/gommon/log"
)

// NewLogger builds the application logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// EchoLogLevel maps LOG_LEVEL onto echo's logger levels.
func EchoLogLevel(cfg Config) log.Lvl {
	level, _ := parseLevel(cfg.LogLevel)
	switch {
	case level <= slog.LevelDebug:
		return log.DEBUG
	case level <= slog.LevelInfo:
		return log.INFO
	case level <= slog.LevelWarn:
		return log.WARN
	default:
		return log.ERROR
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL", fmt.Errorf("%q: %w", s, err))
	}
	return level, nil
}
