package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// LogLevels sets the minimum level per log output. The CLI keeps the
// terminal quiet while the file still records the configured level.
type LogLevels struct {
	Console slog.Level // text on stderr
	File    slog.Level // JSON in the log file
}

// Levels returns the same level for both outputs.
func Levels(level slog.Level) LogLevels {
	return LogLevels{Console: level, File: level}
}

// SetupLogger creates a logger writing text to stderr and JSON to logFile.
// An empty logFile logs to stderr only. Returns the logger and a cleanup
// function closing the file.
func SetupLogger(logFile string, levels LogLevels) (*slog.Logger, func() error) {
	consoleHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levels.Console})
	noop := func() error { return nil }
	if logFile == "" {
		return slog.New(consoleHandler), noop
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Keep going on stderr
		slog.New(consoleHandler).Warn("failed to open log file, using stderr only", "file", logFile, "error", err)
		return slog.New(consoleHandler), noop
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: levels.File})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler)), file.Close
}

// SetupLoggerWithWriters is SetupLogger over arbitrary writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, levels LogLevels) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: levels.Console}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: levels.File}),
	))
}
