package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to stderr, and to an append-only
// log file when path is non-empty. Stdout stays reserved for the frame
// stream, so console output always goes to stderr.
func New(level, path string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}

	var openErr error
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			openErr = err
		} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			openErr = err
		} else {
			out = append(out, f)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(out...)).Level(lvl).With().Timestamp().Logger()
	if openErr != nil {
		logger.Warn().Err(openErr).Str("path", path).Msg("Failed to open log file, logging to stderr only")
	}
	return logger
}
