// Package server wires the observability settings into a running HTTP
// service.
//
// New loads the settings document, starts the observer, resolves the health
// check items into checkers and mounts them on a gorilla/mux router:
//
//	/healthz   full health report, gated by the AllowedIPs list
//	/livez     liveness, always 200
//	/readyz    overall status only, gated like /healthz
//	/metrics   Prometheus scrape endpoint, when the metrics exporter is prometheus
//
// A settings document that cannot be loaded disables its subsystems instead
// of failing: the server still starts and /healthz reports Healthy with no
// results.
//
// Applications embedding the server add their own routes through Router so
// that business metrics and HTTP instrumentation cover them too.
package server
