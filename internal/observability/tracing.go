package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

// SetupTracing installs the global tracer provider. Modes: "off" (nil
// shutdown), "stdout" for local debugging, "otlp" for an OTLP-HTTP
// collector. The returned shutdown flushes pending spans.
func SetupTracing(ctx context.Context, log *logger.Logger, mode string) (func(context.Context) error, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case "", "off":
		return func(context.Context) error { return nil }, nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		return install(log, exporter, mode), nil
	case "otlp":
		exporter, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		return install(log, exporter, mode), nil
	}
	return nil, fmt.Errorf("unknown tracing mode %q", mode)
}

func install(log *logger.Logger, exporter sdktrace.SpanExporter, mode string) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	log.Info("Tracing enabled", "mode", mode)
	return tp.Shutdown
}
