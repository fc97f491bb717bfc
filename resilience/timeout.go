package resilience

import (
	"context"
	"errors"
	"time"
)

// Call runs op with a deadline of timeout and returns its value. If op has
// not returned when the deadline passes, Call returns ErrTimeout and the zero
// value; op keeps running on its own goroutine with a cancelled context. If
// the parent context ends first, its error is returned.
//
// A non-positive timeout only applies the parent context.
func Call[T any](ctx context.Context, timeout time.Duration, op func(context.Context) T) (T, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case v := <-done:
		return v, nil
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}
