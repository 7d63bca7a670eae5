// Package otel wires OpenTelemetry tracing, metrics, and logs for the portal,
// exporting over OTLP gRPC, and adapts telemetry events onto the log pipeline.
package otel

import (
	"context"
	"errors"
	"fmt"
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

const metricInterval = 15 * time.Second

// Providers holds the configured OpenTelemetry providers. Shutdown flushes
// and stops all of them.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Shutdown       func(context.Context) error
}

// collectorTarget reduces an endpoint string to the host:port the gRPC
// exporters dial, and reports whether the connection should skip TLS.
// forceInsecure overrides the scheme, matching OTEL_EXPORTER_OTLP_INSECURE.
func collectorTarget(endpoint string, forceInsecure bool) (target string, insecure bool, err error) {
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: missing host", endpoint)
	}
	return u.Host, forceInsecure || u.Scheme != "https", nil
}

// NewProviders builds trace, meter, and logger providers exporting to the
// OTLP collector at endpoint. An empty endpoint yields no-op providers so the
// portal runs without a collector in development.
func NewProviders(ctx context.Context, endpoint, serviceName string, forceInsecure bool) (*Providers, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return &Providers{
			TracerProvider: sdktrace.NewTracerProvider(),
			MeterProvider:  metric.NewMeterProvider(),
			LoggerProvider: sdklog.NewLoggerProvider(),
			Shutdown:       func(context.Context) error { return nil },
		}, nil
	}

	target, insecure, err := collectorTarget(endpoint, forceInsecure)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp, err := newTracerProvider(ctx, target, insecure, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, target, insecure, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	lp, err := newLoggerProvider(ctx, target, insecure, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	return &Providers{
		TracerProvider: tp,
		MeterProvider:  mp,
		LoggerProvider: lp,
		Shutdown: func(ctx context.Context) error {
			// Logger first; it carries the telemetry events.
			return errors.Join(lp.Shutdown(ctx), mp.Shutdown(ctx), tp.Shutdown(ctx))
		},
	}, nil
}

func newTracerProvider(ctx context.Context, target string, insecure bool, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(target)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, target string, insecure bool, res *resource.Resource) (*metric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(target)}
	if insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exp, metric.WithInterval(metricInterval))),
	), nil
}

func newLoggerProvider(ctx context.Context, target string, insecure bool, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(target)}
	if insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exp, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(res),
	), nil
}

// SetGlobal installs the tracer and meter providers as the process globals so
// OTel-aware instrumentation picks them up. The logger provider stays local;
// it is handed to the event emitter directly.
func (p *Providers) SetGlobal() {
	if p.TracerProvider != nil {
		otel.SetTracerProvider(p.TracerProvider)
	}
	if p.MeterProvider != nil {
		otel.SetMeterProvider(p.MeterProvider)
	}
}
