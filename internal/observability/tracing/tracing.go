package tracing

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "tenantcrm"

// Init wires an OTLP HTTP exporter when OTEL_EXPORTER_OTLP_ENDPOINT is set;
// otherwise tracing stays a no-op. The returned function flushes and stops
// the provider.
func Init(ctx context.Context, logger *slog.Logger, environment string) (func(context.Context) error, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		if logger != nil {
			logger.Info("tracing disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		}
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if logger != nil {
		logger.Info("tracing initialized",
			slog.String("endpoint", endpoint),
			slog.String("environment", environment))
	}
	return tp.Shutdown, nil
}

// TagTenant annotates the request's active span with the tenant scope it
// was authorized under. No-op when the span is not recording.
func TagTenant(ctx context.Context, tenantID, role string) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("tenant.id", tenantID),
		attribute.String("tenant.role", role),
	)
}
