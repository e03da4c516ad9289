package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// ContextWithRequestID stores the provided request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request ID from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithComponentFromContext returns a logger annotated with the component name
// and enriched with the request ID from ctx when one is present.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	l := WithComponent(component)
	if rid := RequestIDFromContext(ctx); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	return l
}
