// Package logging wires log/slog for the interactions API: console output, an
// optional weekly-rotating JSON file, and package-level helpers usable before
// initialization.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures the global logger
type Options struct {
	Dir            string // empty disables file logging
	Level          string // debug, info, warn, error
	RetentionWeeks int
	MaxFileSize    int64
}

type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger at info level with default rotation
func InitLogger(logDir string) {
	_ = InitLoggerWithOptions(Options{
		Dir:            logDir,
		Level:          "info",
		RetentionWeeks: 4,
		MaxFileSize:    100 * 1024 * 1024,
	})
}

// InitLoggerWithOptions replaces the global logger. The returned closer flushes
// and closes the log file, it is a no-op when file logging is disabled.
func InitLoggerWithOptions(opts Options) io.Closer {
	if DefaultLoggingService != nil && DefaultLoggingService.writer != nil {
		_ = DefaultLoggingService.writer.Close()
	}

	level := ParseLevel(opts.Level)
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	}

	var writer *RotatingWriter
	if opts.Dir != "" {
		w, err := NewRotatingWriter(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
		if err != nil {
			slog.New(handlers[0]).Error("File logging disabled", "error", err)
		} else {
			writer = w
			handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
		}
	}

	var logger *slog.Logger
	if len(handlers) == 1 {
		logger = slog.New(handlers[0])
	} else {
		logger = slog.New(&multiHandler{handlers: handlers})
	}

	DefaultLoggingService = &LoggingService{Logger: logger, writer: writer}
	slog.SetDefault(logger)

	return DefaultLoggingService
}

// Close releases the log file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	err := s.writer.Close()
	s.writer = nil
	return err
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Logger returns the global logger, or a stderr fallback when not initialized
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
