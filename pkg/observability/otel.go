// Package observability sets up OpenTelemetry tracing and log export.
package observability

import (
	"context"
	"errors"
	"fmt"

	"movie-booking/pkg/utils"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap/zapcore"
)

const instrumentationScope = "movie-booking"

// Telemetry holds what Setup installed. LogCore is nil when export is off.
type Telemetry struct {
	LogCore  zapcore.Core
	shutdown []func(context.Context) error
}

// Enabled reports whether an exporter was configured.
func (t *Telemetry) Enabled() bool {
	return len(t.shutdown) > 0
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range t.shutdown {
		err = errors.Join(err, fn(ctx))
	}
	t.shutdown = nil
	return err
}

// Setup installs the global tracer and logger providers exporting over
// OTLP/HTTP to config.Endpoint. With no endpoint it installs nothing and the
// global no-op providers stay in place.
func Setup(ctx context.Context, config utils.TracingConfig, serviceName, serviceVersion string) (*Telemetry, error) {
	t := &Telemetry{}
	if config.Endpoint == "" {
		return t, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.Endpoint)}
	logOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		logOpts = append(logOpts, otlploghttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)
	t.shutdown = append(t.shutdown, tracerProvider.Shutdown)

	logExporter, err := otlploghttp.New(ctx, logOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create log exporter: %w", err), t.Shutdown(ctx))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	global.SetLoggerProvider(loggerProvider)
	t.shutdown = append(t.shutdown, loggerProvider.Shutdown)

	t.LogCore = otelzap.NewCore(instrumentationScope, otelzap.WithLoggerProvider(loggerProvider))
	return t, nil
}
