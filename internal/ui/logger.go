package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Options controls logger construction
type Options struct {
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string    // text or json
	Writer  io.Writer // defaults to stderr
}

// Logger provides color-coded leveled logging on top of slog
type Logger struct {
	slog *slog.Logger
}

// NewLogger creates a new logger. Quiet hides info and success messages,
// verbose enables debug messages.
func NewLogger(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	switch {
	case opts.Quiet:
		level = slog.LevelWarn
	case opts.Verbose:
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceLevel,
		})
	} else {
		handler = newConsoleHandler(w, level, !opts.NoColor && isTerminal(w))
	}

	return &Logger{slog: slog.New(handler)}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// replaceLevel names the success level in JSON output
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if level, ok := a.Value.Any().(slog.Level); ok && level == LevelSuccess {
			a.Value = slog.StringValue("SUCCESS")
		}
	}
	return a
}

// With returns a logger that adds the given key/value pairs to every message
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

func (l *Logger) log(level slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level) {
		return
	}
	l.slog.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args...)
}

// Success logs a success message
func (l *Logger) Success(format string, args ...interface{}) {
	l.log(LevelSuccess, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(slog.LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(slog.LevelError, format, args...)
}

// Debug logs a debug message (only if verbose is enabled)
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args...)
}
