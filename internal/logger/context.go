package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	dealIDKey contextKey = "deal_id"
)

// WithUserID stores the user id for request-scoped logging.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithDealID stores the deal id for request-scoped logging.
func WithDealID(ctx context.Context, dealID string) context.Context {
	return context.WithValue(ctx, dealIDKey, dealID)
}

// FromContext returns a logger with whatever ids the context carries.
func FromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()

	var fields []any
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		fields = append(fields, "user_id", userID)
	}
	if dealID, ok := ctx.Value(dealIDKey).(string); ok && dealID != "" {
		fields = append(fields, "deal_id", dealID)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return logger
}
