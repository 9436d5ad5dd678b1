package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithShopID adds shop ID to logger context
func (l *Logger) WithShopID(shopID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("shop_id", shopID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Queue domain logging methods

// LogQueueCreated logs when a queue record is created
func (l *Logger) LogQueueCreated(ctx context.Context, queueID, shopID string, queueNumber int) {
	l.Logger.InfoContext(ctx,
		"Queue Created",
		slog.String("queue_id", queueID),
		slog.String("shop_id", shopID),
		slog.Int("queue_number", queueNumber),
	)
}

// LogQueueDeleted logs when a queue record is hard-deleted
func (l *Logger) LogQueueDeleted(ctx context.Context, queueID, shopID string) {
	l.Logger.InfoContext(ctx,
		"Queue Deleted",
		slog.String("queue_id", queueID),
		slog.String("shop_id", shopID),
	)
}

// LogTransition logs a queue status transition
func (l *Logger) LogTransition(ctx context.Context, queueID, from, to string) {
	l.Logger.InfoContext(ctx,
		"Queue Transition",
		slog.String("queue_id", queueID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogTransitionRejected logs a rejected status transition
func (l *Logger) LogTransitionRejected(ctx context.Context, queueID, from, to string) {
	l.Logger.WarnContext(ctx,
		"Queue Transition Rejected",
		slog.String("queue_id", queueID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogBatchItemFailure logs a single failed item inside a batch operation
func (l *Logger) LogBatchItemFailure(ctx context.Context, operation, queueID string, err error) {
	l.Logger.WarnContext(ctx,
		"Batch Item Failed",
		slog.String("operation", operation),
		slog.String("queue_id", queueID),
		slog.String("error", err.Error()),
	)
}

// LogBatchSummary logs the aggregate outcome of a batch operation
func (l *Logger) LogBatchSummary(ctx context.Context, operation string, total, succeeded, failed int) {
	l.Logger.InfoContext(ctx,
		"Batch Completed",
		slog.String("operation", operation),
		slog.Int("total", total),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
