package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthops/resilience"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks.
	// Default: 60 seconds
	Timeout time.Duration

	// CheckTimeout bounds a single check.
	// Default: 30 seconds
	CheckTimeout time.Duration

	// MaxConcurrent is the number of checks allowed to run at once.
	// Default: 8
	MaxConcurrent int
}

func (c AggregatorConfig) withDefaults() AggregatorConfig {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 30 * time.Second
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 8
	}
	return c
}

type registration struct {
	checker Checker
	tags    []string
}

// Aggregator combines multiple health checkers into a single report.
type Aggregator struct {
	config   AggregatorConfig
	bulkhead *resilience.Bulkhead
	hostname string

	mu       sync.RWMutex
	checkers map[string]registration
	order    []string // Maintains registration order
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg = cfg.withDefaults()

	hostname, _ := os.Hostname()

	return &Aggregator{
		config:   cfg,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: cfg.MaxConcurrent}),
		hostname: hostname,
		checkers: make(map[string]registration),
	}
}

// Register adds a health checker under name with the given report tags.
// Registering an existing name replaces its checker and keeps its position.
func (a *Aggregator) Register(name string, checker Checker, tags ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = registration{
		checker: checker,
		tags:    append([]string(nil), tags...),
	}
}

// CheckerNames returns the names of all registered checkers in
// registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Run executes every registered check and merges the results into a report.
// Checks run concurrently, bounded by MaxConcurrent. A check that panics or
// overruns CheckTimeout becomes an Unhealthy entry; it never aborts the
// other entries.
func (a *Aggregator) Run(ctx context.Context) Report {
	start := time.Now()

	a.mu.RLock()
	entries := make([]Entry, len(a.order))
	regs := make([]registration, len(a.order))
	for i, name := range a.order {
		reg := a.checkers[name]
		regs[i] = reg
		entries[i] = Entry{Name: name, Tags: append([]string(nil), reg.tags...)}
	}
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var g errgroup.Group
	for i := range regs {
		g.Go(func() error {
			queued := time.Now()
			err := a.bulkhead.Execute(ctx, func(ctx context.Context) error {
				entries[i].Result = a.runCheck(ctx, regs[i].checker)
				return nil
			})
			if err != nil {
				entries[i].Result = Unhealthy(
					fmt.Sprintf("check was not started: %v", err),
					fmt.Errorf("%w: %w", ErrCheckNotStarted, err),
				).WithDuration(time.Since(queued))
			}
			return nil
		})
	}
	_ = g.Wait()

	return Report{
		Status:        OverallStatus(entries),
		TotalDuration: time.Since(start),
		MachineName:   a.hostname,
		Entries:       entries,
	}
}

// OverallStatus computes the overall health status from a set of entries.
// Returns Unhealthy if any entry is unhealthy.
// Returns Degraded if any entry is degraded but none are unhealthy.
// Returns Healthy otherwise, including for an empty set.
func OverallStatus(entries []Entry) Status {
	overall := StatusHealthy
	for _, e := range entries {
		if e.Result.Status.Worse(overall) {
			overall = e.Result.Status
		}
	}
	return overall
}

func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()

	result, err := resilience.Call(ctx, a.config.CheckTimeout, func(ctx context.Context) Result {
		return safeCheck(ctx, checker)
	})
	switch {
	case errors.Is(err, resilience.ErrTimeout):
		result = Unhealthy("check timed out", ErrCheckTimeout)
		result.Timestamp = start
	case err != nil:
		result = Unhealthy(fmt.Sprintf("check aborted: %v", err), err)
		result.Timestamp = start
	}

	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return result
}

func safeCheck(ctx context.Context, checker Checker) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Unhealthy(fmt.Sprintf("%v", r), fmt.Errorf("%w: %v", ErrCheckPanicked, r))
			result.Stack = string(debug.Stack())
		}
	}()
	return checker.Check(ctx)
}
