package logging

import (
	"context"
	"log/slog"
)

// ctxKey keys the request-scoped logger in a context.
type ctxKey struct{}

// ContextWithLogger binds l into ctx for request-scoped logging.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext retrieves the bound logger, or the default when the
// context carries none.
func loggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
