// Package logging configures zerolog for the CLI and provides helpers for
// component-scoped and context-carried loggers.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", "warn", ...).
	// Unknown values fall back to info.
	Level string

	// Format selects "console" (human-readable) or "json" output.
	Format string

	// File, when non-empty, receives a copy of all log output in append mode.
	File string
}

// Result holds the constructed logger and the state needed to clean it up.
type Result struct {
	Logger zerolog.Logger

	// UsingFile is true when log output is going to FilePath.
	UsingFile bool

	// FilePath is the log file in use, if any.
	FilePath string

	// FallbackReason explains why file logging was requested but not used.
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if one was opened.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New builds a logger from cfg. When cfg.File cannot be opened the logger
// falls back to stderr-only output and records the reason; a CLI must never
// fail to start because its log file is unwritable.
func New(cfg Config) *Result {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var console io.Writer = os.Stderr
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	result := &Result{}
	writers := []io.Writer{console}
	if cfg.File != "" {
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if openErr != nil {
			result.FallbackReason = openErr.Error()
		} else {
			result.file = f
			result.UsingFile = true
			result.FilePath = cfg.File
			writers = append(writers, f)
		}
	}

	result.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return result
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger carried by ctx, or a disabled logger when
// none is attached.
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}
