// Package logger configures log/slog for the gateway binaries.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the minimum level, the destination and the encoding of log records.
type Config struct {
	Level slog.Level
	// Output defaults to stderr so stdout stays free for command output.
	Output     io.Writer
	JSONFormat bool
}

// NewLogger builds a text or JSON slog.Logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSONFormat {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

// SetDefault installs a logger built from cfg as the slog default.
func SetDefault(cfg Config) {
	slog.SetDefault(NewLogger(cfg))
}

// Setup parses levelName and installs the resulting default logger.
func Setup(levelName string, jsonFormat bool) error {
	level, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	SetDefault(Config{Level: level, JSONFormat: jsonFormat})
	return nil
}

// ParseLevel maps debug, info, warn or error (any case) onto slog.Level.
// An empty name means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}
