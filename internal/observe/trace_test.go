package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// globalTracer installs an in-memory tracer provider for the test. Tests
// using it must not run in parallel.
func globalTracer(t *testing.T) *tracetest.InMemoryExporter {
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

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return &buf
}

func TestCorrelationIDAndLogger(t *testing.T) {
	globalTracer(t)
	logs := captureLogs(t)

	if cid := CorrelationID(context.Background()); cid != "" {
		t.Errorf("CorrelationID without span = %q, want empty", cid)
	}
	Logger(context.Background()).Info("plain")
	if strings.Contains(logs.String(), "trace_id") {
		t.Errorf("span-less log carries trace_id: %s", logs)
	}
	logs.Reset()

	ctx, span := StartSpan(context.Background(), "preset.save")
	defer span.End()

	cid := CorrelationID(ctx)
	if len(cid) != 32 {
		t.Fatalf("correlation id %q, want 32 hex chars", cid)
	}
	Logger(ctx).Info("traced")
	if out := logs.String(); !strings.Contains(out, "trace_id="+cid) || !strings.Contains(out, "span_id=") {
		t.Errorf("traced log = %s", out)
	}
}

func TestEndSpan(t *testing.T) {
	exp := globalTracer(t)

	op := func(fail bool) (err error) {
		_, span := StartSpan(context.Background(), "preset.load")
		defer EndSpan(span, &err, Attr("preset.path", "a.colliders"))
		if fail {
			return errors.New("boom")
		}
		return nil
	}
	_ = op(true)
	_ = op(false)

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	failed, ok := spans[0], spans[1]
	if failed.Status.Code != codes.Error || len(failed.Events) == 0 {
		t.Errorf("failed span status = %v, events = %d", failed.Status.Code, len(failed.Events))
	}
	if ok.Status.Code == codes.Error {
		t.Error("successful span marked as error")
	}
	for _, s := range spans {
		var path string
		for _, a := range s.Attributes {
			if a.Key == "preset.path" {
				path = a.Value.AsString()
			}
		}
		if path != "a.colliders" {
			t.Errorf("span %q preset.path = %q", s.Name, path)
		}
	}
}

func TestEndSpan_NilErrPointer(t *testing.T) {
	exp := globalTracer(t)

	_, span := StartSpan(context.Background(), "tick")
	EndSpan(span, nil)

	if spans := exp.GetSpans(); len(spans) != 1 || spans[0].Status.Code == codes.Error {
		t.Errorf("spans = %+v", spans)
	}
}
