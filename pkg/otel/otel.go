package otel

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "github.com/florex-io/florex"

// engineTracer starts as the global no-op tracer so spans are always usable;
// Init swaps in the real one when a collector is configured.
var engineTracer trace.Tracer = otel.Tracer(instrumentationName)

// Config holds the OpenTelemetry configuration
type Config struct {
	ServiceName      string
	ServiceVersion   string
	Endpoint         string
	ConnectTimeout   time.Duration
	CollectorEnabled bool
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "florex"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.1.0"
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
}

// Init wires tracing and metrics to an OTLP collector and returns a cleanup
// function flushing both pipelines. With the collector disabled everything
// stays on the no-op globals and cleanup does nothing. Exporter setup
// failures log a warning and leave that pipeline disabled; a missing
// collector never blocks the exchange.
func Init(cfg Config) (func(), error) {
	cfg.applyDefaults()

	if !cfg.CollectorEnabled {
		return func() {}, nil
	}

	conn, err := dialCollector(cfg.Endpoint)
	if err != nil {
		log.Printf("Warning: cannot reach OTLP collector at %s: %v. Continuing without telemetry.", cfg.Endpoint, err)
		return func() {}, nil
	}

	res := newResource(cfg)
	var shutdowns []func(context.Context) error

	if tp, err := newTracerProvider(conn, res); err != nil {
		log.Printf("Warning: tracer setup failed: %v. Continuing without tracing.", err)
	} else {
		engineTracer = tp.Tracer(instrumentationName)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if mp, err := newMeterProvider(conn, res); err != nil {
		log.Printf("Warning: meter setup failed: %v. Continuing without metrics.", err)
	} else {
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer cancel()
		for _, shutdown := range shutdowns {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}
	}

	return cleanup, nil
}

func dialCollector(endpoint string) (*grpc.ClientConn, error) {
	return grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
}

func newResource(cfg Config) *sdkresource.Resource {
	detected, err := sdkresource.New(
		context.Background(),
		sdkresource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
		sdkresource.WithOS(),
		sdkresource.WithProcess(),
		sdkresource.WithHost(),
	)
	if err != nil {
		log.Printf("Failed to detect resource attributes: %v", err)
		return sdkresource.Default()
	}

	merged, err := sdkresource.Merge(sdkresource.Default(), detected)
	if err != nil {
		log.Printf("Failed to merge resource attributes: %v", err)
		return sdkresource.Default()
	}
	return merged
}

func newTracerProvider(conn *grpc.ClientConn, res *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(context.Background(), otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1))),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)

	return tp, nil
}

func newMeterProvider(conn *grpc.ClientConn, res *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(context.Background(), otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(5*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// GetEngineTracer returns the tracer used by the matching engine.
func GetEngineTracer() trace.Tracer {
	return engineTracer
}
