package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for all YojanaSetu spans.
const tracerName = "github.com/smarathe/yojanasetu"

// Tracer returns the YojanaSetu tracer from the globally registered
// [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartTurnSpan opens the span covering one voice turn, from the received
// audio frame to the assistant message. The session id is attached as an
// attribute so a conversation's turns group together in the trace backend.
// The caller must End the span when the turn finishes.
func StartTurnSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "dialogue.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
}

// CorrelationID returns the trace id of the active span in ctx, or the empty
// string when there is none. The trace id is the correlation identifier
// exposed to clients via the X-Correlation-ID header.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Logger returns the default [slog.Logger] enriched with trace_id and
// span_id when ctx carries an active span, so turn logs can be joined with
// their traces.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
