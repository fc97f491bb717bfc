// Package health provides the health checking primitives and the report
// served to operators.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Aggregating Health Checks
//
// Use Aggregator to run every registered check and merge the results:
//
//	agg := health.NewAggregator()
//	agg.Register("ORDERS-DB", sqlChecker, "db", "sql")
//	agg.Register("PAYMENTS", apiChecker, "payments", "api")
//
//	report := agg.Run(ctx)
//	fmt.Println(report.Status)
//
// Checks run concurrently with a bounded number of slots and a per-check
// timeout. A check that panics is reported as an Unhealthy entry carrying
// the panic message and stack; the remaining checks are unaffected.
//
// # HTTP Endpoints
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/livez", health.LivenessHandler())
//
//	// Full report, guarded by an IP allow-list
//	http.Handle("/healthz", health.ReportHandler(agg, allowList))
//
// The report body is JSON:
//
//	{"status":"Healthy","totalDuration":"00:00:00.0123456","machineName":"web-1",
//	 "results":[{"name":"ORDERS-DB","status":"Healthy","description":"...",
//	   "duration":"00:00:00.0040000","tags":["db","sql"],"exception":null,
//	   "exceptionStackTrace":null,"data":{}}]}
//
// Healthy and Degraded reports are served with 200, Unhealthy with 503.
package health
