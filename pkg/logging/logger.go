// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for faultkit components.
//
// The package is a thin layer over log/slog:
//
//   - Default: text output on stderr, Unix CLI conventions
//   - Optional: a JSON log file per service and day
//   - Tests: Recorder captures records in memory for assertions
//
// # Architecture
//
//	┌──────────────────────────────────────────────┐
//	│                    Logger                    │
//	│  ┌──────────┐  ┌──────────┐  ┌────────────┐  │
//	│  │  writer  │  │ log file │  │  Recorder  │  │
//	│  │ (stderr) │  │(optional)│  │  (tests)   │  │
//	│  └──────────┘  └──────────┘  └────────────┘  │
//	└──────────────────────────────────────────────┘
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{Level: logging.LevelInfo, Service: "faultctl"})
//	defer logger.Close()
//	reg := registry.New(registry.WithLogger(logger.Slog()))
//
// Components accept a *slog.Logger rather than *Logger so they can be
// used with any slog handler. Discard returns one that drops everything.
//
// # Thread Safety
//
// Logger and Recorder are safe for concurrent use.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity levels, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	// Example: "environment variable unset", "watch event ignored"
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	// Example: "fault injected", "plan applied"
	LevelInfo

	// LevelWarn is for recoverable problems.
	// Example: "deprecated injection alias called", "plan reload failed"
	LevelWarn

	// LevelError is for failed operations.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name into a Level.
//
// Description:
//
//	Accepts debug, info, warn, warning and error in any case. The empty
//	string parses as LevelInfo so unset environment variables fall back
//	to the default.
//
// Inputs:
//   - name: Level name, e.g. the value of FAULTKIT_LOG_LEVEL.
//
// Outputs:
//   - Level: The parsed level.
//   - error: Non-nil if name is not a level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures a Logger. The zero value logs Info and above to stderr as text.
type Config struct {
	// Level sets the minimum log level. Default: LevelInfo.
	Level Level

	// Service is attached to every record as the "service" attribute.
	Service string

	// JSON switches the writer output from text to JSON.
	JSON bool

	// Quiet disables writer output. File and Recorder output are unaffected.
	Quiet bool

	// Writer receives the primary output. Default: os.Stderr.
	Writer io.Writer

	// LogDir enables a JSON log file named "{Service}_{YYYY-MM-DD}.log".
	// Supports ~ expansion. The directory is created with 0750 permissions.
	LogDir string

	// Recorder, when set, also receives every record that passes Level.
	Recorder *Recorder
}

// =============================================================================
// Logger
// =============================================================================

// Logger owns a slog.Logger and the resources behind it.
//
// Always Close a logger configured with LogDir.
type Logger struct {
	slog *slog.Logger
	file *os.File
	mu   sync.Mutex
}

// New creates a Logger from config.
//
// Description:
//
//	Builds one handler per destination and fans records out to all of
//	them. A LogDir that cannot be created or opened is reported once on
//	the remaining handlers and otherwise ignored.
//
// Inputs:
//   - config: Logger configuration.
//
// Outputs:
//   - *Logger: Ready for use.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	logger := &Logger{}

	var handlers []slog.Handler
	if !config.Quiet {
		w := config.Writer
		if w == nil {
			w = os.Stderr
		}
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}

	var fileErr error
	if config.LogDir != "" {
		var h slog.Handler
		logger.file, h, fileErr = openLogFile(config, opts)
		if h != nil {
			handlers = append(handlers, h)
		}
	}

	if config.Recorder != nil {
		handlers = append(handlers, config.Recorder.withLevel(opts.Level.Level()))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.DiscardHandler
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	if fileErr != nil {
		logger.slog.Warn("file logging disabled", "dir", config.LogDir, "error", fileErr)
	}
	return logger
}

// Default returns an Info-level text logger on stderr for service "faultkit".
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "faultkit"})
}

// Discard returns a *slog.Logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Debug logs at Debug level.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs at Info level.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at Warn level.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at Error level.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child Logger with additional attributes.
//
// The child shares the parent's file. Close the parent, not the child.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog returns the underlying slog.Logger for injection into components.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close syncs and closes the log file, if any. Safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := errors.Join(l.file.Sync(), l.file.Close())
	l.file = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func openLogFile(config Config, opts *slog.HandlerOptions) (*os.File, slog.Handler, error) {
	dir := expandPath(config.LogDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	service := config.Service
	if service == "" {
		service = "faultkit"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	// File logs are always JSON.
	return file, slog.NewJSONHandler(file, opts), nil
}

// =============================================================================
// Multi-Handler (Internal)
// =============================================================================

// multiHandler fans out log records to multiple slog handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle sends r to every enabled handler and joins their errors.
func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
