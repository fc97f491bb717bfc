package health

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

func TestNewAggregator(t *testing.T) {
	agg := NewAggregator()

	if agg.config.Timeout != 60*time.Second {
		t.Errorf("Default timeout = %v, want 60s", agg.config.Timeout)
	}
	if agg.config.CheckTimeout != 30*time.Second {
		t.Errorf("Default check timeout = %v, want 30s", agg.config.CheckTimeout)
	}
	if agg.config.MaxConcurrent != 8 {
		t.Errorf("Default MaxConcurrent = %d, want 8", agg.config.MaxConcurrent)
	}
}

func TestNewAggregator_WithConfig(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Timeout:       5 * time.Second,
		MaxConcurrent: 2,
	})

	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}
	if agg.config.CheckTimeout != 30*time.Second {
		t.Errorf("CheckTimeout = %v, want default 30s", agg.config.CheckTimeout)
	}
	if agg.config.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", agg.config.MaxConcurrent)
	}
}

func TestAggregator_Register(t *testing.T) {
	agg := NewAggregator()

	agg.Register("B", healthyChecker("B"))
	agg.Register("A", healthyChecker("A"))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "B" || names[1] != "A" {
		t.Errorf("CheckerNames() = %v, want [B A]", names)
	}
}

func TestAggregator_RegisterDuplicate(t *testing.T) {
	agg := NewAggregator()

	agg.Register("test", healthyChecker("test"))
	agg.Register("other", healthyChecker("other"))
	agg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Degraded("replaced")
	}))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "test" {
		t.Fatalf("CheckerNames() = %v, want [test other]", names)
	}

	report := agg.Run(context.Background())
	if len(report.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(report.Entries))
	}
	if got := report.Entries[0].Result.Message; got != "replaced" {
		t.Errorf("Message = %q, want replaced", got)
	}
}

func TestAggregator_Run(t *testing.T) {
	agg := NewAggregator()

	agg.Register("DB", healthyChecker("DB"), "db", "sql")
	agg.Register("API", NewCheckerFunc("API", func(ctx context.Context) Result {
		return Degraded("slow").WithDetails(map[string]any{"latency": 120})
	}), "api")

	report := agg.Run(context.Background())

	if report.Status != StatusDegraded {
		t.Errorf("Status = %v, want Degraded", report.Status)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(report.Entries))
	}
	if report.Entries[0].Name != "DB" || report.Entries[1].Name != "API" {
		t.Errorf("Entries not in registration order: %s, %s", report.Entries[0].Name, report.Entries[1].Name)
	}
	if got := report.Entries[0].Tags; len(got) != 2 || got[0] != "db" || got[1] != "sql" {
		t.Errorf("Tags = %v, want [db sql]", got)
	}
	if report.TotalDuration <= 0 {
		t.Error("TotalDuration should be positive")
	}
}

func TestAggregator_RunEmpty(t *testing.T) {
	agg := NewAggregator()

	report := agg.Run(context.Background())

	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want Healthy", report.Status)
	}
	if len(report.Entries) != 0 {
		t.Errorf("Entries = %d, want 0", len(report.Entries))
	}
}

func TestAggregator_RunCheckTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		CheckTimeout: 20 * time.Millisecond,
	})

	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("ok")
	}))
	agg.Register("fast", healthyChecker("fast"))

	report := agg.Run(context.Background())

	slow := report.Entries[0].Result
	if slow.Status != StatusUnhealthy {
		t.Errorf("slow status = %v, want Unhealthy", slow.Status)
	}
	if slow.Error != ErrCheckTimeout {
		t.Errorf("slow error = %v, want ErrCheckTimeout", slow.Error)
	}
	if report.Entries[1].Result.Status != StatusHealthy {
		t.Errorf("fast status = %v, want Healthy", report.Entries[1].Result.Status)
	}
}

func TestAggregator_RunOverallTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Timeout: 30 * time.Millisecond,
	})

	agg.Register("hung", NewCheckerFunc("hung", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(100 * time.Millisecond)
		return Healthy("late")
	}))

	start := time.Now()
	report := agg.Run(context.Background())

	if elapsed := time.Since(start); elapsed > 90*time.Millisecond {
		t.Errorf("Run() took %v, want it bounded by the aggregation timeout", elapsed)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want Unhealthy", report.Status)
	}
}

func TestAggregator_RunPanicIsolated(t *testing.T) {
	agg := NewAggregator()

	agg.Register("boom", NewCheckerFunc("boom", func(ctx context.Context) Result {
		panic("driver exploded")
	}))
	agg.Register("ok", healthyChecker("ok"))

	report := agg.Run(context.Background())

	boom := report.Entries[0].Result
	if boom.Status != StatusUnhealthy {
		t.Errorf("boom status = %v, want Unhealthy", boom.Status)
	}
	if !errors.Is(boom.Error, ErrCheckPanicked) {
		t.Errorf("boom error = %v, want ErrCheckPanicked", boom.Error)
	}
	if boom.Message != "driver exploded" {
		t.Errorf("boom message = %q", boom.Message)
	}
	if !strings.Contains(boom.Stack, "goroutine") {
		t.Errorf("boom stack missing: %q", boom.Stack)
	}
	if report.Entries[1].Result.Status != StatusHealthy {
		t.Errorf("ok status = %v, want Healthy", report.Entries[1].Result.Status)
	}
}

func TestAggregator_RunBoundedConcurrency(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{MaxConcurrent: 2})

	var current, peak int32
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		agg.Register(name, NewCheckerFunc(name, func(ctx context.Context) Result {
			n := atomic.AddInt32(&current, 1)
			defer atomic.AddInt32(&current, -1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return Healthy("ok")
		}))
	}

	report := agg.Run(context.Background())

	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want Healthy", report.Status)
	}
	if p := atomic.LoadInt32(&peak); p > 2 || p < 1 {
		t.Errorf("peak concurrency = %d, want 1..2", p)
	}
}

func TestAggregator_RunNotStarted(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		MaxConcurrent: 1,
		Timeout:       30 * time.Millisecond,
	})

	agg.Register("hog", NewCheckerFunc("hog", func(ctx context.Context) Result {
		<-ctx.Done()
		return Unhealthy("cancelled", ctx.Err())
	}))
	agg.Register("queued", healthyChecker("queued"))

	report := agg.Run(context.Background())

	var queued Result
	for _, e := range report.Entries {
		if e.Name == "queued" {
			queued = e.Result
		}
	}
	// queued either never got the slot or ran after hog gave it up.
	if queued.Status == StatusUnhealthy && !errors.Is(queued.Error, ErrCheckNotStarted) && queued.Error != ErrCheckTimeout {
		t.Errorf("queued error = %v", queued.Error)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want Unhealthy", report.Status)
	}
}

func TestOverallStatus(t *testing.T) {
	entry := func(s Status) Entry { return Entry{Result: Result{Status: s}} }

	tests := []struct {
		name    string
		entries []Entry
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Entry{entry(StatusHealthy), entry(StatusHealthy)}, StatusHealthy},
		{"one degraded", []Entry{entry(StatusHealthy), entry(StatusDegraded)}, StatusDegraded},
		{"one unhealthy", []Entry{entry(StatusUnhealthy), entry(StatusHealthy)}, StatusUnhealthy},
		{"mixed", []Entry{entry(StatusDegraded), entry(StatusUnhealthy), entry(StatusHealthy)}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallStatus(tt.entries); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
