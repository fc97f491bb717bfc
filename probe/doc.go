// Package probe implements the protocol probes that have no off-the-shelf
// checker: an HTTP GET with fallback paths, the standard gRPC health
// protocol, and TLS leaf certificate expiry.
//
// Every probe implements health.Checker. Failures never escape as errors or
// panics; they come back as Unhealthy results carrying the cause. Probes hold
// no connection state between runs, so a single value may be checked
// concurrently and repeatedly.
package probe
