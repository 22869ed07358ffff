package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RunIDKey is the context key for the decode run ID
	RunIDKey contextKey = "run_id"
)

// NewRunID returns a fresh identifier for one decode run.
func NewRunID() string {
	return uuid.New().String()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(LoggerKey).(*logrus.Entry); ok {
		return logger
	}
	// Return a default logger if none found
	return logrus.NewEntry(logrus.StandardLogger())
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithRun creates a logger entry carrying a new run ID and stores both in
// the returned context.
func WithRun(ctx context.Context, logger *logrus.Logger) (context.Context, *logrus.Entry) {
	runID := NewRunID()
	entry := logger.WithField("run_id", runID)

	ctx = WithRunID(ctx, runID)
	ctx = WithLogger(ctx, entry)
	return ctx, entry
}
