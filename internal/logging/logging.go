// Package logging provides structured logging for the migration tools using
// Go's slog package. Both binaries log diagnostics to stderr; document
// output never goes through the logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Level represents a log level.
type Level int

const (
	// LevelDebug is for per-construct detail enabled by --verbose.
	LevelDebug Level = iota
	// LevelInfo is for per-document progress.
	LevelInfo
	// LevelWarn is for recoverable oddities such as disambiguated ids.
	LevelWarn
	// LevelError is for per-document failures.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatText outputs human-readable text (the default for terminals).
	FormatText Format = iota
	// FormatJSON outputs one JSON object per line for CI log collectors.
	FormatJSON
)

// LevelFor maps the CLI quiet/verbose switches to a level. Quiet wins when
// both are set.
func LevelFor(quiet, verbose bool) Level {
	switch {
	case quiet:
		return LevelError
	case verbose:
		return LevelDebug
	default:
		return LevelWarn
	}
}

// FormatFor maps the CLI json switch to a format.
func FormatFor(json bool) Format {
	if json {
		return FormatJSON
	}
	return FormatText
}

var defaultLogger *slog.Logger

func init() {
	Init(LevelWarn, FormatText, os.Stderr)
}

// Init configures the global logger. The writer is injectable so tests can
// capture output.
func Init(level Level, format Format, w io.Writer) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	return defaultLogger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// DocumentConverted logs one successful conversion.
func DocumentConverted(input, output string, duration time.Duration, args ...any) {
	allArgs := []any{
		"input", input,
		"output", output,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("document_converted", allArgs...)
}

// DocumentFailed logs one failed document within a batch.
func DocumentFailed(input string, err error, args ...any) {
	allArgs := []any{
		"input", input,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Error("document_failed", allArgs...)
}

// SpliceReport logs the run/program accounting for one splice.
func SpliceReport(document string, runs, programs, matched, skipped int, args ...any) {
	allArgs := []any{
		"document", document,
		"runs", runs,
		"programs", programs,
		"matched", matched,
		"already_spliced", skipped,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("splice_report", allArgs...)
}
