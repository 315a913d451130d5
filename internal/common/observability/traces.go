package observability

import (
	"context"
	"fmt"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"label-compliance/internal/common/logger"
)

const (
	TraceExporterNone = "none"
	TraceExporterLog  = "log"
)

// TraceOptions returns the tracer provider options for the configured exporter.
// "log" batches finished spans into the service logger at debug level.
func TraceOptions(exporter string, log logger.Logger) ([]sdktrace.TracerProviderOption, error) {
	switch exporter {
	case "", TraceExporterNone:
		return nil, nil
	case TraceExporterLog:
		return []sdktrace.TracerProviderOption{sdktrace.WithBatcher(NewLogExporter(log))}, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}
}

// LogExporter writes each finished span as one structured log entry.
type LogExporter struct {
	log     logger.Logger
	mu      sync.Mutex
	stopped bool
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

func NewLogExporter(log logger.Logger) *LogExporter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &LogExporter{log: log}
}

func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}

	for _, span := range spans {
		fields := map[string]interface{}{
			"traceId":    span.SpanContext().TraceID().String(),
			"spanId":     span.SpanContext().SpanID().String(),
			"span":       span.Name(),
			"durationMs": span.EndTime().Sub(span.StartTime()).Milliseconds(),
			"status":     span.Status().Code.String(),
		}
		if parent := span.Parent(); parent.IsValid() {
			fields["parentSpanId"] = parent.SpanID().String()
		}
		if desc := span.Status().Description; desc != "" {
			fields["statusDescription"] = desc
		}
		for _, kv := range span.Attributes() {
			fields["attr."+string(kv.Key)] = kv.Value.Emit()
		}
		e.log.Debug("Span finished", fields)
	}
	return nil
}

func (e *LogExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	return ctx.Err()
}
