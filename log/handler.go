// Package log wires log/slog for the loader and relays guest-originated log
// records into it.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mosaic-dev/loader/domain/entities"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	out       io.Writer
	format    string
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		out:    os.Stderr,
		format: FormatText,
		level:  slog.LevelWarn,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat selects FormatText or FormatJSON.
func WithFormat(format string) HandlerOption {
	return func(c *handlerConfig) {
		c.format = format
	}
}

// WithOutput sets the destination of log records.
func WithOutput(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.out = w
	}
}

// NewHandler creates a text or JSON slog handler.
func NewHandler(opts ...HandlerOption) slog.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	if cfg.format == FormatJSON {
		return slog.NewJSONHandler(cfg.out, hopts)
	}
	return slog.NewTextHandler(cfg.out, hopts)
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the process logger described by cfg. Records go to cfg.LogFile
// when set and to stderr otherwise. The returned closer releases the log file.
//
// Anything written to stderr while the alternate screen is active lands on the
// guest's display.
func Setup(cfg entities.Config) (*slog.Logger, io.Closer, error) {
	levelName := cfg.LogLevel
	if levelName == "" {
		levelName = entities.DefaultLogLevel
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}

	format := cfg.LogFormat
	if format == "" {
		format = entities.DefaultLogFormat
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	handler := NewHandler(WithOutput(out), WithFormat(format), WithLevel(level))
	return slog.New(handler), closer, nil
}
