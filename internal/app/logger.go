// Package app holds process-wide setup shared by the binaries under cmd/.
package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/MrJamesThe3rd/receiptmatch/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat, true)
}

// NewLoggerTo is NewLogger writing to w, for processes that own the terminal.
func NewLoggerTo(w io.Writer, cfg *config.Config) *slog.Logger {
	return newLogger(w, cfg.App.LogLevel, cfg.App.LogFormat, true)
}

func newLogger(w io.Writer, level, format string, install bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(h)
	if install {
		slog.SetDefault(logger)
	}

	return logger
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}

	return l
}
