package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/hiddenrank/internal/config"
)

// newLogger builds the process logger from the logging block. The returned
// closer releases the log file, if any.
func newLogger(settings *config.LoggingSettings) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(settings.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if settings.File != "" {
		f, err := os.OpenFile(settings.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
