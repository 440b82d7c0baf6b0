// Package logging provides structured logging with optional Sentry forwarding.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds logging configuration.
type Config struct {
	Level     slog.Level
	SentryDSN string
	Version   string
	LogFile   string    // Path to log file (empty = Output)
	Output    io.Writer // Defaults to stderr
}

// Logger wraps slog.Logger with Sentry integration.
type Logger struct {
	*slog.Logger
	sentryEnabled bool
	logFile       *os.File
}

var defaultLogger *Logger

// ParseLevel converts a config level name into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
	}
}

// Init initializes the global logger with the given config.
func Init(cfg Config) error {
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: cfg.Version,
		})
		if err != nil {
			return fmt.Errorf("sentry init: %w", err)
		}
		sentryEnabled = true
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	var logFile *os.File

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}

		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		output = f
		logFile = f
	}

	handler := &sentryHandler{
		Handler: slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: cfg.Level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					if t, ok := a.Value.Any().(time.Time); ok {
						a.Value = slog.StringValue(t.Local().Format("15:04:05.000"))
					}
				}
				return a
			},
		}),
		sentryEnabled: sentryEnabled,
	}

	defaultLogger = &Logger{
		Logger:        slog.New(handler),
		sentryEnabled: sentryEnabled,
		logFile:       logFile,
	}
	slog.SetDefault(defaultLogger.Logger)

	return nil
}

// Flush flushes buffered Sentry events and closes the log file. Call before exit.
func Flush(timeout time.Duration) {
	if defaultLogger == nil {
		return
	}
	if defaultLogger.sentryEnabled {
		sentry.Flush(timeout)
	}
	if defaultLogger.logFile != nil {
		defaultLogger.logFile.Sync()
		defaultLogger.logFile.Close()
		defaultLogger.logFile = nil
	}
}

// Default returns the default logger.
func Default() *Logger {
	if defaultLogger == nil {
		return &Logger{Logger: slog.Default()}
	}
	return defaultLogger
}

// sentryHandler wraps an slog.Handler and sends errors to Sentry.
type sentryHandler struct {
	slog.Handler
	sentryEnabled bool
}

func (h *sentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.Handler.Handle(ctx, r); err != nil {
		return err
	}

	if h.sentryEnabled && r.Level >= slog.LevelError {
		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = r.Message
		event.Timestamp = r.Time
		r.Attrs(func(a slog.Attr) bool {
			event.Extra[a.Key] = a.Value.Any()
			return true
		})
		sentry.CaptureEvent(event)
	}

	return nil
}

func (h *sentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sentryHandler{
		Handler:       h.Handler.WithAttrs(attrs),
		sentryEnabled: h.sentryEnabled,
	}
}

func (h *sentryHandler) WithGroup(name string) slog.Handler {
	return &sentryHandler{
		Handler:       h.Handler.WithGroup(name),
		sentryEnabled: h.sentryEnabled,
	}
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs at error level and sends to Sentry.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}
