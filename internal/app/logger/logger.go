package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

var logLevels = map[string]slog.Level{
	"trace":   slog.LevelDebug,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Format selects how records are rendered.
type Format string

const (
	FormatText  Format = "text"  // tint, coloured when writing to a terminal
	FormatPlain Format = "plain" // tint, never coloured
	FormatJSON  Format = "json"
)

// Options describe the default logger installed by the CLI.
type Options struct {
	Level   slog.Level
	Format  Format
	NoColor bool
}

// CleanupFunc is a function that can be deferred to clean up resources.
type CleanupFunc func() error

func ParseLevel(name string) (slog.Level, error) {
	level, ok := logLevels[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}

func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatPlain, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid log format: %s", name)
	}
}

// InitDefaultLogger reads the global logging flags and installs the
// matching handler as the slog default.
func InitDefaultLogger(c *cli.Command) (CleanupFunc, error) {
	noop := func() error { return nil }

	level, err := ParseLevel(c.String("log-level"))
	if err != nil {
		return noop, err
	}
	format, err := ParseFormat(c.String("log-format"))
	if err != nil {
		return noop, err
	}

	w, cleanup := os.Stderr, noop
	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return noop, fmt.Errorf("open log file: %w", err)
		}
		w, cleanup = f, f.Close
	}

	opts := Options{Level: level, Format: format, NoColor: c.Bool("no-color")}
	if format == FormatText && !colorEnabled(w, opts.NoColor) {
		opts.NoColor = true
	}

	var out io.Writer = w
	if format == FormatText && !opts.NoColor {
		out = colorable.NewColorable(w)
	}
	slog.SetDefault(slog.New(NewHandler(out, opts)))
	return cleanup, nil
}

func colorEnabled(f *os.File, forceOff bool) bool {
	if forceOff || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewHandler builds the slog handler for opts writing to w.
func NewHandler(w io.Writer, opts Options) slog.Handler {
	if opts.Format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: opts.Level <= slog.LevelDebug,
			Level:     opts.Level,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor || opts.Format == FormatPlain,
		AddSource:  opts.Level <= slog.LevelDebug,
	})
}

// NewDiscardLogger returns a logger that drops every record.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetDiscardLogger silences the default logger, mostly for tests.
func SetDiscardLogger() {
	slog.SetDefault(NewDiscardLogger())
}
