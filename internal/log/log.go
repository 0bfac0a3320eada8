// Package log configures structured logging for xo using log/slog.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Setup configures the default slog logger on stderr.
//
//   - quiet mode:   only ERROR messages
//   - normal mode:  WARN and above
//   - verbose mode: DEBUG and above
//
// Lint results go to stdout, so the default level keeps stderr free of
// progress chatter.
func Setup(verbose, quiet bool) {
	SetupWriter(os.Stderr, verbose, quiet)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, verbose, quiet bool) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(verbose, quiet),
	})))
}

// Level maps the verbosity flags to a slog level. quiet wins over verbose.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
