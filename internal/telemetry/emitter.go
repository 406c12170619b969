package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SlogEmitter logs one structured line per event, matching the teacher's
// own server.Run logging convention (slog.NewJSONHandler(os.Stdout, nil)
// set as the default logger) rather than introducing a separate logging
// library the pack never uses.
type SlogEmitter struct {
	Logger *slog.Logger
}

func (e SlogEmitter) Emit(ctx context.Context, ev StatusEvent) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, 4+2*len(ev.Attributes))
	if ev.RequestID != "" {
		args = append(args, "request_id", ev.RequestID)
	}
	if ev.Subgraph != "" {
		args = append(args, "subgraph", ev.Subgraph)
	}
	for k, v := range ev.Attributes {
		args = append(args, k, v)
	}

	if ev.Err != nil {
		args = append(args, "error", ev.Err.Error())
		logger.ErrorContext(ctx, ev.Kind.String(), args...)
		return
	}
	logger.InfoContext(ctx, ev.Kind.String(), args...)
}

// OtelEmitter attaches one span event per StatusEvent to the span active in
// ctx (a no-op if the context carries no recording span), the way the
// teacher's otelhttp instrumentation already surfaces HTTP-level spans —
// this extends the same tracing surface down into plan/dispatch granularity.
type OtelEmitter struct{}

func (OtelEmitter) Emit(ctx context.Context, ev StatusEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, 3+len(ev.Attributes))
	if ev.RequestID != "" {
		attrs = append(attrs, attribute.String("request_id", ev.RequestID))
	}
	if ev.Subgraph != "" {
		attrs = append(attrs, attribute.String("subgraph", ev.Subgraph))
	}
	if ev.Message != "" {
		attrs = append(attrs, attribute.String("message", ev.Message))
	}
	for k, v := range ev.Attributes {
		attrs = append(attrs, attribute.String(k, toAttrString(v)))
	}

	span.AddEvent(ev.Kind.String(), trace.WithAttributes(attrs...))
	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	}
}

func toAttrString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
