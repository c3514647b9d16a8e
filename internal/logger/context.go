package logger

import (
	"context"

	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithCaller binds c to the request logger and to the context, so every
// downstream log line names who searched.
func WithCaller(ctx context.Context, c caller.Context) context.Context {
	fields := []zap.Field{
		zap.String("user_id", c.UserID()),
		zap.String("role", string(c.Role())),
	}
	if c.DriverID() != "" {
		fields = append(fields, zap.String("driver_id", c.DriverID()))
	}
	ctx = ContextWithLogger(ctx, FromContext(ctx).With(fields...))
	return caller.WithContext(ctx, c)
}
