package observe

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Middleware wraps health checks with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a checker that is safe for concurrent use
//     when the wrapped checker is.
//   - Context: Propagates context through tracing spans.
//   - Ownership: Results are passed through unchanged apart from Duration,
//     which is filled in when the wrapped checker left it zero.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap returns a checker that instruments every run of checker.
func (m *Middleware) Wrap(checker health.Checker, meta CheckMeta) health.Checker {
	if meta.Name == "" {
		meta.Name = checker.Name()
	}
	return &instrumentedChecker{
		next:   checker,
		meta:   meta,
		mw:     m,
		logger: m.logger.With(F("check.name", meta.Name), F("check.kind", meta.Kind)),
	}
}

type instrumentedChecker struct {
	next   health.Checker
	meta   CheckMeta
	mw     *Middleware
	logger Logger
}

func (c *instrumentedChecker) Name() string {
	return c.next.Name()
}

// Check runs the wrapped checker inside a span. A panic still ends the span
// and records an unhealthy run before it is re-raised.
func (c *instrumentedChecker) Check(ctx context.Context) health.Result {
	ctx, span := c.mw.tracer.StartSpan(ctx, c.meta)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			failed := health.Unhealthy(fmt.Sprintf("%v", r), fmt.Errorf("%w: %v", health.ErrCheckPanicked, r)).
				WithDuration(time.Since(start))
			c.mw.tracer.EndSpan(span, failed)
			c.mw.metrics.RecordCheck(ctx, c.meta, failed)
			c.logger.Error(ctx, "health check panicked", F("error", failed.Error))
			panic(r)
		}
	}()
	result := c.next.Check(ctx)
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}

	c.mw.tracer.EndSpan(span, result)
	c.mw.metrics.RecordCheck(ctx, c.meta, result)

	fields := []Field{
		F("status", result.Status.String()),
		F("duration_ms", float64(result.Duration.Milliseconds())),
	}
	switch result.Status {
	case health.StatusHealthy:
		c.logger.Debug(ctx, "health check passed", fields...)
	case health.StatusDegraded:
		c.logger.Warn(ctx, "health check degraded", append(fields, F("description", result.Message))...)
	default:
		fields = append(fields, F("description", result.Message))
		if result.Error != nil {
			fields = append(fields, F("error", result.Error))
		}
		c.logger.Error(ctx, "health check failed", fields...)
	}

	return result
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
