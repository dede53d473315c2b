package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
)

const serviceVersion = "0.1.0"

var (
	tracerProvider *sdktrace.TracerProvider
)

// Enabled reports whether an OTLP collector is configured.
func Enabled(cfg *config.Config) bool {
	return cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != ""
}

// Setup starts tracing and metrics and returns one shutdown for both.
// With telemetry disabled it is a no-op.
func Setup(cfg *config.Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !Enabled(cfg) {
		return noop, nil
	}
	if _, err := SetupTracing(cfg); err != nil {
		return noop, err
	}
	if _, err := SetupMetrics(cfg); err != nil {
		_ = Shutdown(context.Background())
		return noop, err
	}
	return func(ctx context.Context) error {
		return errors.Join(Shutdown(ctx), ShutdownMetrics(ctx))
	}, nil
}

func newResource(cfg *config.Config) (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.Name),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", cfg.App.Env),
		),
	)
}

// otlpEndpoint strips the scheme; the grpc exporters expect host:port.
func otlpEndpoint(cfg *config.Config) string {
	endpoint := cfg.Telemetry.OtlpEndpoint
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return endpoint
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1.0 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// SetupTracing initializes OpenTelemetry tracing
func SetupTracing(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if !Enabled(cfg) {
		return nil, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(otlpEndpoint(cfg)),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.Telemetry.SampleRatio)),
	)

	otel.SetTracerProvider(tracerProvider)
	// W3C trace context also rides in AMQP headers, see infra/queue
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider, nil
}

// Shutdown gracefully shuts down the tracer provider
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// GinMiddleware traces the RPC surface only. Health checks, swagger and the
// long-lived relay connection are skipped.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return strings.HasPrefix(r.URL.Path, "/api/")
		}),
	)
}

// TraceIDMiddleware returns a Gin middleware that adds trace ID to response headers
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			c.Header("X-Trace-Id", span.SpanContext().TraceID().String())
		}
		c.Next()
	}
}
