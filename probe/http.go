package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// DefaultAttemptTimeout bounds each HTTP attempt.
const DefaultAttemptTimeout = 5 * time.Second

// DefaultFallbackPaths are tried, in order, against the main URL's origin
// when the main URL does not answer with a 2xx status.
var DefaultFallbackPaths = []string{"swagger/index.html", "healthz"}

// HTTPFallback probes an HTTP endpoint, falling back to well-known paths on
// the same origin.
type HTTPFallback struct {
	name      string
	mainURL   string
	client    *http.Client
	logger    observe.Logger
	timeout   time.Duration
	fallbacks []string
}

// HTTPOption configures an HTTPFallback.
type HTTPOption func(*HTTPFallback)

// WithHTTPClient sets the client used for every attempt.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPFallback) {
		if c != nil {
			p.client = c
		}
	}
}

// WithLogger sets the logger that receives failed attempts.
func WithLogger(l observe.Logger) HTTPOption {
	return func(p *HTTPFallback) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithAttemptTimeout overrides the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPFallback) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithFallbackPaths replaces the fallback path list.
func WithFallbackPaths(paths ...string) HTTPOption {
	return func(p *HTTPFallback) {
		p.fallbacks = append([]string(nil), paths...)
	}
}

// NewHTTPFallback creates an HTTP probe for mainURL.
func NewHTTPFallback(name, mainURL string, opts ...HTTPOption) *HTTPFallback {
	p := &HTTPFallback{
		name:      name,
		mainURL:   strings.TrimSpace(mainURL),
		client:    &http.Client{},
		logger:    observe.NopLogger(),
		timeout:   DefaultAttemptTimeout,
		fallbacks: DefaultFallbackPaths,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the check name.
func (p *HTTPFallback) Name() string {
	return p.name
}

// Check GETs the main URL and then each fallback path until one answers
// with a 2xx status.
func (p *HTTPFallback) Check(ctx context.Context) health.Result {
	if p.mainURL == "" {
		return health.Unhealthy("endpoint is not configured", ErrEndpointNotConfigured)
	}

	main, err := url.Parse(p.mainURL)
	if err != nil || main.Scheme == "" || main.Host == "" {
		return health.Unhealthy(
			fmt.Sprintf("invalid URL %s", p.mainURL),
			fmt.Errorf("%w: %q", ErrInvalidURL, p.mainURL),
		)
	}

	if p.attempt(ctx, main.String()) {
		return health.Healthy(fmt.Sprintf("Main URL %s is healthy.", p.mainURL)).
			WithDetails(map[string]any{"url": main.String()})
	}

	for _, path := range p.fallbacks {
		if ctx.Err() != nil {
			break
		}
		fallback := fallbackURL(main, path)
		if p.attempt(ctx, fallback) {
			return health.Healthy(fmt.Sprintf("Successfully reached fallback path %s", fallback)).
				WithDetails(map[string]any{"url": fallback})
		}
	}

	err = ErrAllAttemptsFailed
	if ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ErrAllAttemptsFailed, ctx.Err())
	}
	return health.Unhealthy(fmt.Sprintf("All checks for %s and fallback paths failed.", p.mainURL), err)
}

// attempt reports whether a GET of target returned a 2xx status. Transport
// errors are logged and count as a failed attempt.
func (p *HTTPFallback) attempt(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		p.logger.Error(ctx, "error checking url", observe.F("url", target), observe.F("error", err))
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error(ctx, "error checking url", observe.F("url", target), observe.F("error", err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Debug(ctx, "url returned non-success status",
			observe.F("url", target), observe.F("status_code", resp.StatusCode))
		return false
	}
	return true
}

func fallbackURL(main *url.URL, path string) string {
	u := url.URL{
		Scheme: main.Scheme,
		User:   main.User,
		Host:   main.Host,
		Path:   "/" + strings.TrimLeft(path, "/"),
	}
	return u.String()
}
