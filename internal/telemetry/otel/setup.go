// Package otel bootstraps OpenTelemetry for the server process: tracer, meter
// and logger providers with OTLP gRPC exporters. With no collector endpoint
// configured everything degrades to no-ops so local runs need no collector.
package otel

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

const metricExportInterval = 10 * time.Second

// Options configures the telemetry bootstrap.
type Options struct {
	// Endpoint is the OTLP collector endpoint. Accepts host:port or a URL;
	// any URL path is ignored since OTLP gRPC dials host:port. Empty means
	// telemetry is disabled.
	Endpoint string
	// ServiceName is reported as service.name on every signal.
	ServiceName string
	// Environment is reported as deployment.environment (e.g. "production").
	Environment string
	// Insecure forces plaintext even for https endpoints, matching the
	// standard OTEL_EXPORTER_OTLP_INSECURE switch.
	Insecure bool
}

// Telemetry holds the configured providers and their shutdown.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider

	shutdownFns []func(context.Context) error
}

// Setup builds the providers. When opts.Endpoint is empty the returned
// providers are no-ops and Shutdown does nothing.
func Setup(ctx context.Context, opts Options) (*Telemetry, error) {
	target, insecure, err := resolveTarget(opts)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return &Telemetry{
			TracerProvider: sdktrace.NewTracerProvider(),
			MeterProvider:  metric.NewMeterProvider(),
			LoggerProvider: sdklog.NewLoggerProvider(),
		}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.DeploymentEnvironmentNameKey.String(opts.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tel := &Telemetry{}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(target)}
	if insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
	}
	traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, err
	}
	tel.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	tel.shutdownFns = append(tel.shutdownFns, tel.TracerProvider.Shutdown)

	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(target)}
	if insecure {
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}
	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	tel.MeterProvider = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExp, metric.WithInterval(metricExportInterval))),
	)
	tel.shutdownFns = append(tel.shutdownFns, tel.MeterProvider.Shutdown)

	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(target)}
	if insecure {
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}
	logExp, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	tel.LoggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)
	tel.shutdownFns = append(tel.shutdownFns, tel.LoggerProvider.Shutdown)

	return tel, nil
}

// Shutdown flushes and stops all providers, most recently started first.
// Errors are logged and the last one returned.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var lastErr error
	for i := len(t.shutdownFns) - 1; i >= 0; i-- {
		if err := t.shutdownFns[i](ctx); err != nil {
			log.Printf("telemetry: shutdown: %v", err)
			lastErr = err
		}
	}
	return lastErr
}

// SetGlobal installs the tracer and meter providers globally so instrumentation
// such as the otelgrpc stats handler picks them up. The logger provider stays
// local; pass it explicitly where needed.
func (t *Telemetry) SetGlobal() {
	if t.TracerProvider != nil {
		otel.SetTracerProvider(t.TracerProvider)
	}
	if t.MeterProvider != nil {
		otel.SetMeterProvider(t.MeterProvider)
	}
}

// resolveTarget normalizes opts.Endpoint to a host:port gRPC dial target and
// decides TLS. https implies TLS unless opts.Insecure is set.
func resolveTarget(opts Options) (target string, insecure bool, err error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return "", false, nil
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: %w", opts.Endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: missing host", opts.Endpoint)
	}
	return u.Host, opts.Insecure || u.Scheme != "https", nil
}
