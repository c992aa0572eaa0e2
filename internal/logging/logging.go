// Package logging builds the zerolog logger shared by submatch components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options control where log lines go.
type Options struct {
	Level string
	// File receives JSON log lines when set.
	File string
	// Console receives human-readable lines when set, typically os.Stderr.
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to the configured sinks. The returned closer
// releases the log file. With no sinks the logger discards everything.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	lvl := ParseLevel(opts.Level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
		})
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
		closer = file
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// ParseLevel maps a config level onto zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
