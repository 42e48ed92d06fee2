// Package logger builds the application's *slog.Logger.
//
// The environment picks the format and default verbosity:
//
//	prod     JSON, INFO and above (easy to ingest by Loki, CloudWatch…)
//	staging  JSON, DEBUG and above
//	dev      human-readable text, DEBUG and above (also the fallback)
//
// An explicit level ("debug", "info", "warn", "error") overrides the
// environment default.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New returns a logger writing to w, configured for env and level.
// An empty level keeps the environment default.
func New(w io.Writer, env, level string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var json bool
	switch env {
	case "prod":
		json = true
		opts.Level = slog.LevelInfo
	case "staging":
		json = true
	}

	if level != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return nil, err
		}
		opts.Level = lvl
	}

	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ParseLevel accepts debug, info, warn/warning and error, in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
