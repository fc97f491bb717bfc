package observe

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetric selects a request path whose traffic is counted under its
// own metric name.
type BusinessMetric struct {
	MetricName     string
	Endpoint       string
	RecordSuccess  bool
	RecordFailure  bool
	RecordDuration bool
}

type businessInstruments struct {
	def      BusinessMetric
	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// BusinessMetrics counts requests per configured endpoint. Instruments are
// created once, when the middleware is built.
type BusinessMetrics struct {
	byEndpoint map[string]*businessInstruments
}

// NewBusinessMetrics creates the instruments for defs on meter. Metric names
// are trimmed and lower-cased. When two definitions share an endpoint
// (case-insensitive) the first one wins.
func NewBusinessMetrics(meter metric.Meter, defs []BusinessMetric) (*BusinessMetrics, error) {
	bm := &BusinessMetrics{byEndpoint: make(map[string]*businessInstruments, len(defs))}

	for _, def := range defs {
		def.MetricName = strings.ToLower(strings.TrimSpace(def.MetricName))
		if def.MetricName == "" {
			return nil, ErrMissingMetricName
		}
		key := strings.ToLower(def.Endpoint)
		if _, exists := bm.byEndpoint[key]; exists {
			continue
		}

		inst := &businessInstruments{def: def}
		var err error
		if def.RecordSuccess {
			inst.requests, err = meter.Int64Counter(
				def.MetricName+"_http_requests_total",
				metric.WithDescription("Total number of HTTP requests"),
				metric.WithUnit("{request}"),
			)
			if err != nil {
				return nil, fmt.Errorf("observe: business metric %s: %w", def.MetricName, err)
			}
		}
		if def.RecordFailure {
			inst.errors, err = meter.Int64Counter(
				def.MetricName+"_http_errors_total",
				metric.WithDescription("Total number of HTTP errors"),
				metric.WithUnit("{error}"),
			)
			if err != nil {
				return nil, fmt.Errorf("observe: business metric %s: %w", def.MetricName, err)
			}
		}
		if def.RecordDuration {
			inst.duration, err = meter.Float64Histogram(
				def.MetricName+"_http_request_duration_seconds",
				metric.WithDescription("Duration of HTTP requests"),
				metric.WithUnit("s"),
			)
			if err != nil {
				return nil, fmt.Errorf("observe: business metric %s: %w", def.MetricName, err)
			}
		}
		bm.byEndpoint[key] = inst
	}

	return bm, nil
}

// Enabled reports whether any endpoint is tracked.
func (bm *BusinessMetrics) Enabled() bool {
	return bm != nil && len(bm.byEndpoint) > 0
}

// Handler wraps next, recording metrics for requests whose path matches a
// configured endpoint. Other requests pass through untouched.
func (bm *BusinessMetrics) Handler(next http.Handler) http.Handler {
	if !bm.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inst, ok := bm.byEndpoint[strings.ToLower(r.URL.Path)]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		inst.record(r, rec.status, time.Since(start))
	})
}

func (inst *businessInstruments) record(r *http.Request, status int, elapsed time.Duration) {
	ctx := r.Context()
	base := []attribute.KeyValue{
		attribute.String("name", inst.def.MetricName),
		attribute.String("endpoint", r.URL.Path),
		attribute.String("method", r.Method),
	}

	withStatus := metric.WithAttributes(append(base, attribute.Int("status_code", status))...)
	switch {
	case status >= 200 && status < 300 && inst.def.RecordSuccess:
		inst.requests.Add(ctx, 1, withStatus)
	case inst.def.RecordFailure && (status < 200 || status >= 300):
		inst.errors.Add(ctx, 1, withStatus)
	}

	if inst.def.RecordDuration {
		inst.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(base...))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
