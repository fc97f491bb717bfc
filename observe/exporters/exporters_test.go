package exporters

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// TestExporter_InvalidName verifies unknown exporter name returns error.
func TestExporter_InvalidName(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), Config{Type: "invalid"})
	if err == nil {
		t.Fatal("expected error for invalid exporter name")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unknown exporter") {
		t.Errorf("expected error to contain 'unknown exporter', got: %v", err)
	}
}

// TestExporter_StdoutTracing verifies stdout tracing exporter.
func TestExporter_StdoutTracing(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), Config{Type: "stdout", Writer: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("failed to create stdout tracing exporter: %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
}

// TestExporter_StdoutMetrics verifies stdout metrics reader.
func TestExporter_StdoutMetrics(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), Config{Type: "STDOUT", Writer: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("failed to create stdout metrics reader: %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

// TestExporter_OtlpMissingEndpoint verifies OTLP without an endpoint fails.
func TestExporter_OtlpMissingEndpoint(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), Config{Type: "otlp"})
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("expected ErrEndpointNotConfigured, got: %v", err)
	}

	_, err = NewMetricsReader(context.Background(), Config{Type: "otlp", Endpoint: "  "})
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("expected ErrEndpointNotConfigured, got: %v", err)
	}
}

// TestExporter_OtlpProtocols verifies both OTLP protocols build exporters.
func TestExporter_OtlpProtocols(t *testing.T) {
	for _, protocol := range []string{"grpc", "http/protobuf", ""} {
		t.Run("protocol="+protocol, func(t *testing.T) {
			cfg := Config{Type: "otlp", Endpoint: "localhost:4317", Protocol: protocol}

			exp, err := NewTracingExporter(context.Background(), cfg)
			if err != nil {
				t.Fatalf("NewTracingExporter() error = %v", err)
			}
			_ = exp.Shutdown(context.Background())

			reader, err := NewMetricsReader(context.Background(), cfg)
			if err != nil {
				t.Fatalf("NewMetricsReader() error = %v", err)
			}
			_ = reader.Shutdown(context.Background())
		})
	}
}

// TestExporter_PrometheusReturnsReader verifies Prometheus metrics reader.
func TestExporter_PrometheusReturnsReader(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), Config{
		Type:       "prometheus",
		Registerer: promclient.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("failed to create Prometheus reader: %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

// TestExporter_NoneReturnsNoop verifies an empty type returns a no-op exporter.
func TestExporter_NoneReturnsNoop(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), Config{})
	if err != nil {
		t.Fatalf("failed to create none exporter: %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}

	reader, err := NewMetricsReader(context.Background(), Config{Type: "none"})
	if err != nil {
		t.Fatalf("failed to create none metrics reader: %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

// TestExporter_MetricsInvalidName verifies unknown metrics exporter returns error.
func TestExporter_MetricsInvalidName(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), Config{Type: "badvalue"})
	if err == nil {
		t.Fatal("expected error for invalid metrics exporter name")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unknown") {
		t.Errorf("expected error to contain 'unknown', got: %v", err)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	got := Config{Protocol: "GRPC", Processor: "Simple"}.WithDefaults()

	if got.Type != TypeNone {
		t.Errorf("Type = %q, want none", got.Type)
	}
	if got.Protocol != ProtocolGRPC {
		t.Errorf("Protocol = %q, want grpc", got.Protocol)
	}
	if got.Processor != ProcessorSimple {
		t.Errorf("Processor = %q, want simple", got.Processor)
	}
	if got.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", got.Timeout)
	}

	got = Config{Protocol: "thrift", Processor: ""}.WithDefaults()
	if got.Protocol != ProtocolHTTPProtobuf {
		t.Errorf("Protocol = %q, want http/protobuf", got.Protocol)
	}
	if got.Processor != ProcessorBatch {
		t.Errorf("Processor = %q, want batch", got.Processor)
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"collector:4318", "http://collector:4318"},
		{"http://collector:4318", "http://collector:4318"},
		{"HTTPS://collector", "HTTPS://collector"},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := EndpointURL(tt.in); got != tt.want {
			t.Errorf("EndpointURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
