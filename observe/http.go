package observe

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPConfig toggles HTTP instrumentation.
type HTTPConfig struct {
	// Server instruments inbound requests.
	Server bool

	// Client instruments outbound requests made by probes.
	Client bool
}

// InstrumentHandler wraps h with otelhttp server spans and metrics when
// cfg.Server is set.
func InstrumentHandler(obs Observer, cfg HTTPConfig, operation string, h http.Handler) http.Handler {
	if obs == nil || !cfg.Server {
		return h
	}
	return otelhttp.NewHandler(h, operation,
		otelhttp.WithTracerProvider(obs.TracerProvider()),
		otelhttp.WithMeterProvider(obs.MeterProvider()),
	)
}

// HTTPClient returns an HTTP client whose transport is instrumented with
// otelhttp when cfg.Client is set. The client carries no timeout; callers
// bound requests through their context.
func HTTPClient(obs Observer, cfg HTTPConfig) *http.Client {
	if obs == nil || !cfg.Client {
		return &http.Client{}
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(obs.TracerProvider()),
			otelhttp.WithMeterProvider(obs.MeterProvider()),
		),
	}
}
