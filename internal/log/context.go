package log

import (
	"context"
	"log/slog"

	"budgetit/internal/core"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return Default()
}

// StructuredLogger logs the result of engine operations at a level that
// matches their outcome.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	if logger == nil {
		logger = Default()
	}
	return &StructuredLogger{logger: logger}
}

// LogOutcome logs success at Info, validation outcomes at Warn and
// persistence failures at Error.
func (sl *StructuredLogger) LogOutcome(ctx context.Context, msg, operation string, err error, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	outcome := core.Classify(err)
	fields = fields.
		WithOperation(operation).
		WithError(err).
		With(FieldOutcome, outcome.String())

	level := slog.LevelInfo
	switch outcome {
	case core.OutcomeValidationError, core.OutcomeIntegrityBlocked:
		level = slog.LevelWarn
	case core.OutcomePersistenceFailure:
		level = slog.LevelError
	}

	args := append([]any{FieldComponent, sl.logger.component}, fields.ToSlice()...)
	sl.logger.Logger.Log(ctx, level, msg, args...)
}

// Logger returns the underlying component logger.
func (sl *StructuredLogger) Logger() *Logger {
	return sl.logger
}
