// Package observe provides the observability primitives used around health
// checks and the HTTP surface.
//
// NewObserver builds OpenTelemetry tracer and meter providers from a Config
// (exporters are created by the exporters subpackage) and a zap-backed
// structured Logger. Middleware decorates a health.Checker with a span named
// health.check.<name> and the health.check.* metrics. BusinessMetrics counts
// traffic on configured request paths, and InstrumentHandler / HTTPClient
// attach otelhttp instrumentation to inbound and outbound HTTP.
package observe
