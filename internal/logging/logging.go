// Package logging provides structured logging for agentmemory, writing
// JSON lines via log/slog to a rotating-free single log file alongside the
// database, with an optional mirror to stderr for interactive use.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config controls where and how verbosely agentmemory logs.
type Config struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string
	// FilePath is the log file location. Empty disables file logging.
	FilePath string
	// WriteToStderr also mirrors log lines to stderr.
	WriteToStderr bool
}

// DefaultConfig returns info-level logging to index.log beside the db,
// without a stderr mirror (CLI commands print their own output).
func DefaultConfig(dbDir string) Config {
	return Config{
		Level:         "info",
		FilePath:      filepath.Join(dbDir, "index.log"),
		WriteToStderr: false,
	}
}

// DebugConfig enables debug-level logging with a stderr mirror, used by the
// --debug CLI flag.
func DebugConfig(dbDir string) Config {
	cfg := DefaultConfig(dbDir)
	cfg.Level = "debug"
	cfg.WriteToStderr = true
	return cfg
}

// Setup opens the log file (if configured) and returns a logger plus a
// cleanup function the caller must invoke before exit.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	var writers []io.Writer
	var file *os.File

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		file = f
		writers = append(writers, f)
	}
	if cfg.WriteToStderr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	var out io.Writer
	if len(writers) == 1 {
		out = writers[0]
	} else {
		out = io.MultiWriter(writers...)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	logger := slog.New(handler)

	cleanup := func() {
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, cleanup, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
