package probe

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// pathServer answers each path with the configured status and records the
// order of requests.
type pathServer struct {
	mu     sync.Mutex
	status map[string]int
	calls  []string
}

func (s *pathServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls = append(s.calls, r.URL.Path)
	code, ok := s.status[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		code = http.StatusNotFound
	}
	w.WriteHeader(code)
}

func (s *pathServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func TestHTTPFallback_MainHealthySkipsFallbacks(t *testing.T) {
	ps := &pathServer{status: map[string]int{"/api/status": http.StatusOK}}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	p := NewHTTPFallback("API", srv.URL+"/api/status")
	result := p.Check(context.Background())

	if result.Status != health.StatusHealthy {
		t.Fatalf("Status = %v, want Healthy (%s)", result.Status, result.Message)
	}
	if calls := ps.Calls(); len(calls) != 1 {
		t.Errorf("calls = %v, want exactly one request", calls)
	}
	if !strings.Contains(result.Message, "Main URL") {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestHTTPFallback_FallbackSucceeds(t *testing.T) {
	ps := &pathServer{status: map[string]int{
		"/api/status": http.StatusInternalServerError,
		"/healthz":    http.StatusOK,
	}}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	p := NewHTTPFallback("API", srv.URL+"/api/status")
	result := p.Check(context.Background())

	if result.Status != health.StatusHealthy {
		t.Fatalf("Status = %v, want Healthy (%s)", result.Status, result.Message)
	}

	want := []string{"/api/status", "/swagger/index.html", "/healthz"}
	calls := ps.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
		}
	}
	if result.Details["url"] != srv.URL+"/healthz" {
		t.Errorf("url detail = %v", result.Details["url"])
	}
}

func TestHTTPFallback_SwaggerFirst(t *testing.T) {
	ps := &pathServer{status: map[string]int{
		"/swagger/index.html": http.StatusOK,
		"/healthz":            http.StatusOK,
	}}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	result := NewHTTPFallback("API", srv.URL+"/v1/orders").Check(context.Background())

	if result.Status != health.StatusHealthy {
		t.Fatalf("Status = %v, want Healthy", result.Status)
	}
	if calls := ps.Calls(); len(calls) != 2 || calls[1] != "/swagger/index.html" {
		t.Errorf("calls = %v, want main then swagger only", calls)
	}
}

func TestHTTPFallback_AllFail(t *testing.T) {
	ps := &pathServer{status: map[string]int{}}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	mainURL := srv.URL + "/api/status"
	result := NewHTTPFallback("API", mainURL).Check(context.Background())

	if result.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want Unhealthy", result.Status)
	}
	if !strings.Contains(result.Message, mainURL) {
		t.Errorf("Message = %q, want it to name %s", result.Message, mainURL)
	}
	if !errors.Is(result.Error, ErrAllAttemptsFailed) {
		t.Errorf("Error = %v, want ErrAllAttemptsFailed", result.Error)
	}
	if calls := ps.Calls(); len(calls) != 3 {
		t.Errorf("calls = %v, want 3 attempts", calls)
	}
}

func TestHTTPFallback_TransportErrorsAreLogged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	mainURL := srv.URL + "/status"
	srv.Close()

	var logs bytes.Buffer
	p := NewHTTPFallback("API", mainURL, WithLogger(observe.NewLoggerWithWriter("info", &logs)))
	result := p.Check(context.Background())

	if result.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want Unhealthy", result.Status)
	}
	if got := strings.Count(logs.String(), "error checking url"); got != 3 {
		t.Errorf("logged %d failed attempts, want 3:\n%s", got, logs.String())
	}
}

func TestHTTPFallback_AttemptTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	p := NewHTTPFallback("API", srv.URL+"/slow", WithAttemptTimeout(20*time.Millisecond))

	start := time.Now()
	result := p.Check(context.Background())

	if result.Status != health.StatusHealthy {
		t.Fatalf("Status = %v, want Healthy via /healthz", result.Status)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Check() took %v, attempts were not bounded", elapsed)
	}
}

func TestHTTPFallback_ContextCancelled(t *testing.T) {
	ps := &pathServer{status: map[string]int{"/": http.StatusOK}}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewHTTPFallback("API", srv.URL+"/").Check(ctx)

	if result.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want Unhealthy", result.Status)
	}
	if !errors.Is(result.Error, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled", result.Error)
	}
}

func TestHTTPFallback_InvalidURL(t *testing.T) {
	tests := []struct {
		url  string
		want error
	}{
		{"", ErrEndpointNotConfigured},
		{"not a url", ErrInvalidURL},
		{"://missing-scheme", ErrInvalidURL},
	}

	for _, tt := range tests {
		result := NewHTTPFallback("API", tt.url).Check(context.Background())
		if result.Status != health.StatusUnhealthy || !errors.Is(result.Error, tt.want) {
			t.Errorf("Check(%q) = %v / %v, want Unhealthy / %v", tt.url, result.Status, result.Error, tt.want)
		}
	}
}

func TestHTTPFallback_Concurrent(t *testing.T) {
	ps := &pathServer{status: map[string]int{"/": http.StatusOK}}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	p := NewHTTPFallback("API", srv.URL+"/")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r := p.Check(context.Background()); r.Status != health.StatusHealthy {
				t.Errorf("Status = %v, want Healthy", r.Status)
			}
		}()
	}
	wg.Wait()

	if calls := ps.Calls(); len(calls) != 10 {
		t.Errorf("calls = %d, want 10", len(calls))
	}
}

func TestFallbackURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api.example.com:8443/v1/orders?x=1", nil)

	if got := fallbackURL(req.URL, "swagger/index.html"); got != "https://api.example.com:8443/swagger/index.html" {
		t.Errorf("fallbackURL() = %q", got)
	}
	if got := fallbackURL(req.URL, "/healthz"); got != "https://api.example.com:8443/healthz" {
		t.Errorf("fallbackURL() = %q", got)
	}
}
