// Package checkers adapts dependency client libraries to health.Checker and
// registers a descriptor set with an aggregator.
//
// Each checker opens what it needs for one check and releases it before
// returning, so a registered checker holds no connections between runs.
// Failures are reported as Unhealthy results, never as errors.
//
// Register maps every descriptor kind to its checker: the probe package for
// ExternalApi, Grpc and SSL, and the adapters here for the rest. Each checker
// is wrapped with observe.Middleware so runs are traced, counted and logged.
package checkers
