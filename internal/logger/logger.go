package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"betkeeper/internal/trace"
)

var (
	globalLogger *slog.Logger
	logLevel     slog.Level
)

// Config holds logging configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // json or text
}

// Init initializes the global logger from LOG_LEVEL and LOG_FORMAT.
func Init() {
	InitWithConfig(Config{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	})
}

// InitWithConfig initializes the global logger with an explicit config.
func InitWithConfig(cfg Config) {
	logLevel = parseLogLevel(cfg.Level)

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, args...)
}

// ErrorWithErr logs an error message with an error object, recording it
// on the active span when tracing is on.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if trace.Enabled() {
		span := oteltrace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
		}
	}
	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, allArgs...)
}

// logWithTrace enriches the record with trace and span IDs if a span is
// active on the context.
func logWithTrace(ctx context.Context, level slog.Level, msg string, args ...any) {
	if globalLogger == nil {
		InitWithConfig(Config{Level: "INFO", Format: "json"})
	}
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		args = append([]any{"trace_id", traceID, "span_id", spanID}, args...)
	}
	globalLogger.Log(ctx, level, msg, args...)
}

// Transaction logs a ledger mutation (always at INFO).
func Transaction(ctx context.Context, kind string, amount, balance float64, fields ...any) {
	if trace.Enabled() {
		span := oteltrace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("ledger_transaction", oteltrace.WithAttributes(
				attribute.String("kind", kind),
				attribute.Float64("amount", amount),
				attribute.Float64("balance", balance),
			))
		}
	}
	allFields := append([]any{
		"type", "TRANSACTION",
		"kind", kind,
		"amount", amount,
		"balance", balance,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Ledger transaction recorded", allFields...)
}
