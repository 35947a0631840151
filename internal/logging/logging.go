// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "NAPKIN_LOG_LEVEL"

var logLevel = new(slog.LevelVar)

// Configure sets up the global default logger with a TextHandler on w and
// sets the level from NAPKIN_LOG_LEVEL. It defaults to Warn so that reports
// written to stdout are not interleaved with chatter; verbose forces Debug.
func Configure(w io.Writer, verbose bool) {
	logLevel.Set(ParseLevel(os.Getenv(EnvLevel)))
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a level.
// Anything else yields Warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelWarn
}
