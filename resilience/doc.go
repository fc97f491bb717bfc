// Package resilience provides the concurrency and time limits applied to
// dependency checks.
//
//   - Bulkhead: bounds how many checks run at once. Callers queue for a slot
//     until one frees up, their context ends or the optional wait limit passes.
//
//   - Call: runs an operation under a deadline and returns ErrTimeout if the
//     operation has not produced a value in time. The operation's context is
//     cancelled so well-behaved operations release their resources.
//
// # Usage
//
//	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 8})
//
//	err := b.Execute(ctx, func(ctx context.Context) error {
//	    res, err := resilience.Call(ctx, 5*time.Second, probe)
//	    ...
//	})
package resilience
