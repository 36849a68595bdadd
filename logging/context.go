package logging

import (
	"context"
	"log/slog"
)

var ContextKey = contextKeyType{}

type contextKeyType struct{}

func (contextKeyType) String() string {
	return "formkit/logging.ContextKey"
}

// From returns the logger carried by ctx, or slog.Default().
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if v := ctx.Value(ContextKey); v != nil {
			return v.(*slog.Logger)
		}
	}
	return slog.Default()
}

func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKey, logger)
}

// WithAttrs derives a logger with extra attributes and stores it in ctx.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	return With(ctx, From(ctx).With(args...))
}
