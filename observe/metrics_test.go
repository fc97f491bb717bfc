package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/healthops/health"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// findMetric finds a metric by name in the collected resource metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_TotalCounterIncrements verifies health.check.total is incremented.
func TestMetrics_TotalCounterIncrements(t *testing.T) {
	reader, mp := newTestMeter(t)

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CheckMeta{Name: "ORDERS-DB", Kind: "Sql"}
	m.RecordCheck(context.Background(), meta, health.Healthy("ok").WithDuration(100*time.Millisecond))
	m.RecordCheck(context.Background(), meta, health.Healthy("ok").WithDuration(20*time.Millisecond))

	rm := collect(t, reader)

	found := findMetric(rm, "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}
	if got := sumValue(t, found); got != 2 {
		t.Errorf("expected count 2, got %d", got)
	}
}

// TestMetrics_UnhealthyCounter verifies only unhealthy results are counted.
func TestMetrics_UnhealthyCounter(t *testing.T) {
	reader, mp := newTestMeter(t)

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CheckMeta{Name: "CACHE", Kind: "Redis"}
	m.RecordCheck(context.Background(), meta, health.Healthy("ok"))
	m.RecordCheck(context.Background(), meta, health.Degraded("slow"))
	m.RecordCheck(context.Background(), meta, health.Unhealthy("down", nil))

	rm := collect(t, reader)

	found := findMetric(rm, "health.check.unhealthy")
	if found == nil {
		t.Fatal("health.check.unhealthy metric not found")
	}
	if got := sumValue(t, found); got != 1 {
		t.Errorf("expected unhealthy count 1, got %d", got)
	}
}

// TestMetrics_Attributes verifies the check attributes on data points.
func TestMetrics_Attributes(t *testing.T) {
	reader, mp := newTestMeter(t)

	m, _ := newMetrics(mp.Meter("test"))
	m.RecordCheck(context.Background(), CheckMeta{Name: "PAYMENTS", Kind: "ExternalApi"}, health.Unhealthy("down", nil))

	rm := collect(t, reader)
	found := findMetric(rm, "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}

	dp := found.Data.(metricdata.Sum[int64]).DataPoints[0]
	want := map[attribute.Key]string{
		"check.name":   "PAYMENTS",
		"check.kind":   "ExternalApi",
		"check.status": "Unhealthy",
	}
	for k, v := range want {
		got, ok := dp.Attributes.Value(k)
		if !ok || got.AsString() != v {
			t.Errorf("attribute %s = %v, want %s", k, got.AsString(), v)
		}
	}
}

// TestMetrics_DurationHistogram verifies durations are recorded in milliseconds.
func TestMetrics_DurationHistogram(t *testing.T) {
	reader, mp := newTestMeter(t)

	m, _ := newMetrics(mp.Meter("test"))
	m.RecordCheck(context.Background(), CheckMeta{Name: "DB"}, health.Healthy("ok").WithDuration(1500*time.Microsecond))

	rm := collect(t, reader)
	found := findMetric(rm, "health.check.duration_ms")
	if found == nil {
		t.Fatal("health.check.duration_ms metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if hist.DataPoints[0].Sum != 1.5 {
		t.Errorf("duration sum = %v, want 1.5", hist.DataPoints[0].Sum)
	}
}
