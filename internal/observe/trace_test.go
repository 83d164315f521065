package observe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installTestTracer swaps the global tracer provider for one backed by an
// in-memory exporter and restores it after the test.
func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(orig)
		_ = tp.Shutdown(context.Background())
	})
	return exp
}

func TestStartTurnSpanRecordsSessionID(t *testing.T) {
	exp := installTestTracer(t)

	ctx, span := StartTurnSpan(context.Background(), "sess-42")
	if CorrelationID(ctx) == "" {
		t.Error("turn span has no trace id")
	}
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].Name != "dialogue.turn" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "dialogue.turn")
	}
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "session.id" && a.Value.AsString() == "sess-42" {
			found = true
		}
	}
	if !found {
		t.Error("span missing session.id attribute")
	}
}

func TestCorrelationIDEmptyWithoutSpan(t *testing.T) {
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID(background) = %q, want empty", got)
	}
}

func TestCorrelationIDIsTraceID(t *testing.T) {
	exp := installTestTracer(t)

	ctx, span := StartTurnSpan(context.Background(), "sess-1")
	cid := CorrelationID(ctx)
	span.End()

	if len(cid) != 32 {
		t.Fatalf("correlation id length = %d, want 32", len(cid))
	}
	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if want := spans[0].SpanContext.TraceID().String(); cid != want {
		t.Errorf("correlation id = %q, want trace id %q", cid, want)
	}
}

func TestLoggerCarriesTraceFields(t *testing.T) {
	installTestTracer(t)

	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })

	ctx, span := StartTurnSpan(context.Background(), "sess-log")
	defer span.End()

	Logger(ctx).Info("turn started")

	out := buf.String()
	if !strings.Contains(out, "trace_id=") {
		t.Errorf("log output missing trace_id: %s", out)
	}
	if !strings.Contains(out, "span_id=") {
		t.Errorf("log output missing span_id: %s", out)
	}
}

func TestLoggerWithoutSpanHasNoTraceFields(t *testing.T) {
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })

	Logger(context.Background()).Info("no span")

	if out := buf.String(); strings.Contains(out, "trace_id") {
		t.Errorf("log output should not contain trace_id: %s", out)
	}
}
