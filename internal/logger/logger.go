package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

var (
	// default logger instance
	defaultLogger *slog.Logger
)

// initializes the logger based on environment
func init() {
	defaultLogger = slog.New(newHandler(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL")))
}

// production writes JSON to stdout, everything else writes text to stderr
func newHandler(env, level string) slog.Handler {
	if env == "production" {
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLevel(level, slog.LevelInfo),
		})
	}

	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level, slog.LevelDebug),
	})
}

// maps LOG_LEVEL values onto slog levels, falling back to the environment default
func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// returns the default logger instance
func Default() *slog.Logger {
	return defaultLogger
}

// creates a logger with additional context fields
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

// returns the logger stored in ctx, or the default logger
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// adds logger to context
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

type loggerKey struct{}

// logs a debug message
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// logs an info message
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// logs a warning message
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// logs an error message
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// logs an error with context
func ErrorErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
}

// logs a fatal error and exits (for CLI tools)
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// logs a fatal error with error and exits (for CLI tools)
func FatalErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}
