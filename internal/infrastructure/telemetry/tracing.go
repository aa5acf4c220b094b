package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer behind application spans.
const TracerName = "salesdash"

// Span attribute keys
const (
	SpanAttrMonth   = "report.month"
	SpanAttrYear    = "report.year"
	SpanAttrSearch  = "report.search"
	SpanAttrPage    = "report.page"
	SpanAttrRecords = "dataset.records"
)

// SpanOption is applied when an application span starts.
type SpanOption = trace.SpanStartOption

// WithAttribute sets key on the span, converting value by its dynamic type.
func WithAttribute(key string, value any) SpanOption {
	return trace.WithAttributes(toAttribute(key, value))
}

func WithSpanKind(kind trace.SpanKind) SpanOption { return trace.WithSpanKind(kind) }

// StartServiceSpan opens a span named "service.method" on the global tracer.
// Spans default to SpanKindInternal. The caller ends the span.
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method, opts...)
}

// SetAttributes takes alternating keys and values. Pairs whose key is not a
// string are dropped, as is a trailing key without a value.
func SetAttributes(span trace.Span, kv ...any) {
	if span == nil {
		return
	}
	var attrs []attribute.KeyValue
	for i := 1; i < len(kv); i += 2 {
		if key, ok := kv[i-1].(string); ok {
			attrs = append(attrs, toAttribute(key, kv[i]))
		}
	}
	span.SetAttributes(attrs...)
}

// RecordError attaches err to span and sets the span status to Error.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value any) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case float64:
		return k.Float64(v)
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	}
	return k.String(fmt.Sprint(value))
}
