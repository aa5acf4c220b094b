package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

// Context keys. Exported so callers can inspect a context without importing zap.
const (
	LoggerKey ctxKey = iota
	RequestIDKey
)

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}

// FromContext returns the stored logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records id in ctx and stores a logger tagged with it.
func WithRequestID(ctx context.Context, l *zap.Logger, id string) (context.Context, *zap.Logger) {
	tagged := l.With(zap.String("request_id", id))
	ctx = context.WithValue(ctx, RequestIDKey, id)
	return WithContext(ctx, tagged), tagged
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// TraceFields correlates a log line with the active span. Nil without one.
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.Stringer("trace_id", sc.TraceID()),
		zap.Stringer("span_id", sc.SpanID()),
	}
}

// L is FromContext plus trace correlation, for use inside services.
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if f := TraceFields(ctx); len(f) > 0 {
		return l.With(f...)
	}
	return l
}
