// Package exporters provides factory functions for creating OpenTelemetry exporters.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter types.
const (
	TypeOTLP       = "otlp"
	TypePrometheus = "prometheus"
	TypeStdout     = "stdout"
	TypeNone       = "none"
)

// OTLP protocols.
const (
	ProtocolGRPC         = "grpc"
	ProtocolHTTPProtobuf = "http/protobuf"
)

// Span processors.
const (
	ProcessorBatch  = "batch"
	ProcessorSimple = "simple"
)

// DefaultTimeout is the export timeout used when none is configured.
const DefaultTimeout = 5 * time.Second

// ErrEndpointNotConfigured indicates an OTLP exporter without an endpoint.
var ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")

// Config describes one exporter.
type Config struct {
	// Type is otlp, prometheus, stdout or none. Empty means none.
	Type string

	// Endpoint is the collector address. A missing scheme becomes http://.
	Endpoint string

	// Protocol is grpc or http/protobuf. Default: http/protobuf
	Protocol string

	// Processor is batch or simple. Default: batch
	Processor string

	// Timeout bounds each export. Default: 5s
	Timeout time.Duration

	// Registerer receives the Prometheus collector. Default: the global registry.
	Registerer promclient.Registerer

	// Writer receives stdout exporter output. Default: os.Stdout
	Writer io.Writer
}

// WithDefaults returns c with empty fields filled in.
func (c Config) WithDefaults() Config {
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.Type == "" {
		c.Type = TypeNone
	}
	c.Protocol = strings.ToLower(strings.TrimSpace(c.Protocol))
	if c.Protocol != ProtocolGRPC {
		c.Protocol = ProtocolHTTPProtobuf
	}
	c.Processor = strings.ToLower(strings.TrimSpace(c.Processor))
	if c.Processor != ProcessorSimple {
		c.Processor = ProcessorBatch
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	return c
}

// EndpointURL returns the endpoint with an http:// scheme when it has none.
func EndpointURL(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	lower := strings.ToLower(endpoint)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return endpoint
	}
	return "http://" + endpoint
}

// NewTracingExporter creates a trace span exporter for cfg.
// Supported types: otlp, stdout, none
func NewTracingExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	cfg = cfg.WithDefaults()

	switch cfg.Type {
	case TypeStdout:
		return stdouttrace.New(stdouttrace.WithWriter(cfg.Writer))

	case TypeOTLP:
		endpoint := EndpointURL(cfg.Endpoint)
		if endpoint == "" {
			return nil, fmt.Errorf("%w: trace exporter needs an endpoint", ErrEndpointNotConfigured)
		}
		if cfg.Protocol == ProtocolGRPC {
			return otlptracegrpc.New(ctx,
				otlptracegrpc.WithEndpointURL(endpoint),
				otlptracegrpc.WithTimeout(cfg.Timeout),
			)
		}
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithTimeout(cfg.Timeout),
		)

	case TypeNone:
		// Return a no-op exporter that discards everything
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))

	default:
		return nil, fmt.Errorf("unknown exporter: %q", cfg.Type)
	}
}

// NewMetricsReader creates a metrics reader for cfg.
// Supported types: otlp, prometheus, stdout, none
func NewMetricsReader(ctx context.Context, cfg Config) (sdkmetric.Reader, error) {
	cfg = cfg.WithDefaults()

	switch cfg.Type {
	case TypeStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithTimeout(cfg.Timeout)), nil

	case TypeOTLP:
		endpoint := EndpointURL(cfg.Endpoint)
		if endpoint == "" {
			return nil, fmt.Errorf("%w: metrics exporter needs an endpoint", ErrEndpointNotConfigured)
		}

		var (
			exp sdkmetric.Exporter
			err error
		)
		if cfg.Protocol == ProtocolGRPC {
			exp, err = otlpmetricgrpc.New(ctx,
				otlpmetricgrpc.WithEndpointURL(endpoint),
				otlpmetricgrpc.WithTimeout(cfg.Timeout),
			)
		} else {
			exp, err = otlpmetrichttp.New(ctx,
				otlpmetrichttp.WithEndpointURL(endpoint),
				otlpmetrichttp.WithTimeout(cfg.Timeout),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithTimeout(cfg.Timeout)), nil

	case TypePrometheus:
		var opts []prometheus.Option
		if cfg.Registerer != nil {
			opts = append(opts, prometheus.WithRegisterer(cfg.Registerer))
		}
		exp, err := prometheus.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		return exp, nil

	case TypeNone:
		// Return a no-op reader
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", cfg.Type)
	}
}
