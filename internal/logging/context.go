package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// TraceIDKey returns the context key for an explicit trace ID. It takes
// precedence over the ID of an active OpenTelemetry span.
func TraceIDKey() interface{} {
	return traceIDKey
}

// SpanIDKey returns the context key for an explicit span ID.
func SpanIDKey() interface{} {
	return spanIDKey
}

// extractContextFields returns trace_id and span_id from explicit context
// values or, failing that, from the span recorded in ctx. Nil when neither
// is present.
func extractContextFields(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}

	fields := make(map[string]interface{})

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}

	if traceID := ctx.Value(traceIDKey); traceID != nil {
		fields["trace_id"] = traceID
	}
	if spanID := ctx.Value(spanIDKey); spanID != nil {
		fields["span_id"] = spanID
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
