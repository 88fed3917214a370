package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a context carrying a logger extended with fields. Middleware
// uses this to pin the trace id so every log line in a request shares it.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the logger stored in context, or the default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
