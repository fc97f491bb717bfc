package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthops/checkers"
	"github.com/jonwraymond/healthops/gate"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/observe/exporters"
	"github.com/jonwraymond/healthops/secret"
	"github.com/jonwraymond/healthops/setting"
)

// Route paths served by the router.
const (
	HealthPath    = "/healthz"
	LivenessPath  = "/livez"
	ReadinessPath = "/readyz"
	MetricsPath   = "/metrics"
)

const (
	// DefaultAddr is the listen address used when Config.Addr is empty.
	DefaultAddr = ":8080"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures New.
type Config struct {
	// Addr is the listen address. Default: ":8080"
	Addr string

	// SettingPath is the settings document. Default: setting.DefaultFile
	SettingPath string

	// Settings, when set, is used instead of loading SettingPath.
	Settings *setting.ObservabilitySetting

	// Version is reported as the service version of traces and metrics.
	Version string

	// Logger receives the server's own messages. Default: a JSON logger at
	// info level on stderr.
	Logger observe.Logger

	// Secrets creates the providers named in the settings document.
	// Default: secret.DefaultRegistry
	Secrets *secret.Registry

	// ShutdownTimeout bounds Run's graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.SettingPath == "" {
		c.SettingPath = setting.DefaultFile
	}
	if c.Logger == nil {
		c.Logger = observe.NewLogger("info")
	}
	if c.Secrets == nil {
		c.Secrets = secret.DefaultRegistry
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

// Server is a configured health and telemetry HTTP service.
type Server struct {
	cfg      Config
	settings *setting.ObservabilitySetting
	logger   observe.Logger
	obs      observe.Observer
	resolver *secret.Resolver
	agg      *health.Aggregator
	router   *mux.Router
	handler  http.Handler
	httpSrv  *http.Server
}

// New builds the server. It fails only when the observer cannot be started
// even with telemetry disabled.
func New(ctx context.Context, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	s := &Server{cfg: cfg, logger: cfg.Logger}

	s.settings = s.loadSettings()

	var promReg *prometheus.Registry
	obsCfg := s.settings.ObserveConfig(cfg.Version)
	if obsCfg.Metrics.Enabled && obsCfg.Metrics.Exporter.Type == exporters.TypePrometheus {
		promReg = prometheus.NewRegistry()
		obsCfg.Metrics.Exporter.Registerer = promReg
	}

	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		s.logger.Error(ctx, "telemetry disabled", observe.F("error", err))
		obsCfg.Tracing = observe.TracingConfig{}
		obsCfg.Metrics = observe.MetricsConfig{}
		promReg = nil
		if obs, err = observe.NewObserver(ctx, obsCfg); err != nil {
			return nil, fmt.Errorf("server: start observer: %w", err)
		}
	}
	s.obs = obs

	httpCfg := s.settings.HTTPConfig()
	s.agg = health.NewAggregator(s.settings.AggregatorConfig())
	s.registerChecks(ctx, httpCfg)

	allow := gate.New(s.settings.AllowedIPs)
	s.router = mux.NewRouter()
	s.router.Handle(HealthPath, health.ReportHandler(s.agg, allow)).Methods(http.MethodGet)
	s.router.Handle(LivenessPath, health.LivenessHandler()).Methods(http.MethodGet)
	s.router.Handle(ReadinessPath, health.ReadinessHandler(s.agg, allow)).Methods(http.MethodGet)
	if promReg != nil {
		s.router.Handle(MetricsPath, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	var h http.Handler = s.router
	bm, err := observe.NewBusinessMetrics(obs.Meter(), s.settings.BusinessMetrics())
	if err != nil {
		s.logger.Warn(ctx, "business metrics disabled", observe.F("error", err))
	} else {
		h = bm.Handler(h)
	}
	h = observe.InstrumentHandler(obs, httpCfg, s.settings.ApplicationName, h)
	if s.settings.TrustProxyHeaders {
		h = handlers.ProxyHeaders(h)
	}
	s.handler = h

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) loadSettings() *setting.ObservabilitySetting {
	if s.cfg.Settings != nil {
		s.cfg.Settings.SetApplicationNames()
		return s.cfg.Settings
	}

	st, err := setting.Load(s.cfg.SettingPath)
	if err != nil {
		s.logger.Warn(context.Background(), "settings not loaded, health checks and telemetry disabled",
			observe.F("path", s.cfg.SettingPath),
			observe.F("error", err),
		)
		st = &setting.ObservabilitySetting{}
		st.SetApplicationNames()
	}
	return st
}

func (s *Server) registerChecks(ctx context.Context, httpCfg observe.HTTPConfig) {
	if !s.settings.IsHealthCheckEnabled() {
		return
	}

	resolver, err := s.settings.Resolver(s.cfg.Secrets)
	if err != nil {
		s.logger.Warn(ctx, "secret providers unavailable, using environment only", observe.F("error", err))
		resolver = secret.NewResolver(true, secret.EnvProvider{})
	}
	s.resolver = resolver

	set, rejected := s.settings.Descriptors(ctx, resolver)
	for _, r := range rejected {
		s.logger.Warn(ctx, "health check item rejected",
			observe.F("index", r.Index),
			observe.F("kind", r.Kind.String()),
			observe.F("name", r.Name),
			observe.F("error", r.Reason),
		)
	}

	mw, err := observe.MiddlewareFromObserver(s.obs)
	if err != nil {
		s.logger.Warn(ctx, "health check instrumentation disabled", observe.F("error", err))
	}

	n := checkers.Register(s.agg, set, checkers.Options{
		HTTPClient: observe.HTTPClient(s.obs, httpCfg),
		Logger:     s.obs.Logger(),
		Middleware: mw,
	})
	s.logger.Info(ctx, "health checks registered",
		observe.F("application", set.ApplicationName()),
		observe.F("count", n),
		observe.F("rejected", len(rejected)),
	)
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Router returns the router for additional application routes.
func (s *Server) Router() *mux.Router { return s.router }

// Aggregator returns the aggregator running the registered checks.
func (s *Server) Aggregator() *health.Aggregator { return s.agg }

// Settings returns the effective settings document.
func (s *Server) Settings() *setting.ObservabilitySetting { return s.settings }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(gctx, "listening", observe.F("addr", ln.Addr().String()))
		if err := s.httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the HTTP server and flushes telemetry.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: http shutdown: %w", err))
	}
	if err := s.obs.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: observer shutdown: %w", err))
	}
	if err := s.resolver.Close(); err != nil {
		errs = append(errs, fmt.Errorf("server: close secret providers: %w", err))
	}
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
