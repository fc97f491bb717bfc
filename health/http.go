package health

import (
	"encoding/json"
	"net"
	"net/http"
)

// ForbiddenMessage is the body returned to callers outside the allow-list.
const ForbiddenMessage = "Forbidden: Your IP is not allowed to access this resource."

// Gate decides whether a caller may see the health report.
type Gate interface {
	Allows(remoteIP string) bool
}

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReportHandler returns the HTTP handler serving the full health report.
// The gate is consulted before any check runs; a rejected caller gets 403
// and no checks are executed. A nil gate admits every caller.
func ReportHandler(agg *Aggregator, gate Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !admit(w, r, gate) {
			return
		}

		report := agg.Run(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(StatusCode(report.Status))

		_ = json.NewEncoder(w).Encode(report)
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes. It runs
// all checks but only exposes the overall status. The gate applies as for
// ReportHandler.
func ReadinessHandler(agg *Aggregator, gate Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !admit(w, r, gate) {
			return
		}

		report := agg.Run(r.Context())

		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(StatusCode(report.Status))
		_, _ = w.Write([]byte(report.Status.String()))
	}
}

// admit writes the forbidden response and returns false when gate rejects
// the caller.
func admit(w http.ResponseWriter, r *http.Request, gate Gate) bool {
	if gate == nil || gate.Allows(RemoteIP(r)) {
		return true
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(ForbiddenMessage))
	return false
}

// StatusCode maps an overall status to its HTTP status code.
func StatusCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// RemoteIP returns the caller address of r without its port.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
