package setting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonwraymond/healthops/descriptor"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/observe/exporters"
	"github.com/jonwraymond/healthops/secret"
)

// Descriptors resolves the credentials of every health check item and builds
// the descriptor set. Items whose secrets cannot be resolved are rejected
// with ErrSecret alongside the builder's own rejections; rejection indexes
// refer to HealthCheck.Items.
func (s *ObservabilitySetting) Descriptors(ctx context.Context, resolver *secret.Resolver) (*descriptor.Set, []descriptor.Rejection) {
	var items []HealthCheckItem
	if s.HealthCheck != nil {
		items = s.HealthCheck.Items
	}

	var (
		resolved  = make([]descriptor.Item, 0, len(items))
		origIndex = make([]int, 0, len(items))
		rejected  []descriptor.Rejection
	)
	for i, it := range items {
		item := it.toItem()
		err := resolver.ResolveFields(ctx,
			&item.Endpoint, &item.UserName, &item.Password, &item.CdnAccessKey, &item.CdnSecretKey)
		if err != nil {
			rejected = append(rejected, descriptor.Rejection{
				Index:  i,
				Kind:   descriptor.ParseKind(item.Type),
				Name:   item.Name,
				Reason: fmt.Errorf("%w: %w", ErrSecret, err),
			})
			continue
		}
		resolved = append(resolved, item)
		origIndex = append(origIndex, i)
	}

	set, buildRejected := descriptor.Build(s.ApplicationName, resolved)
	for _, r := range buildRejected {
		r.Index = origIndex[r.Index]
		rejected = append(rejected, r)
	}
	sort.SliceStable(rejected, func(i, j int) bool { return rejected[i].Index < rejected[j].Index })
	return set, rejected
}

func (it HealthCheckItem) toItem() descriptor.Item {
	return descriptor.Item{
		Type:                    it.Type,
		Name:                    it.Name,
		Endpoint:                it.Endpoint,
		AllowedFailureThreshold: it.AllowedFailureThreshold,
		CdnBucketName:           it.CdnBucketName,
		CdnAccessKey:            it.CdnAccessKey,
		CdnSecretKey:            it.CdnSecretKey,
		PingTimeoutMilliSecond:  it.PingTimeoutMilliSecond,
		UserName:                it.UserName,
		Password:                it.Password,
		Tags:                    append([]string(nil), it.Tags...),
	}
}

// Resolver builds a strict secret resolver from the Secrets section using
// reg. The env and file providers are always present.
func (s *ObservabilitySetting) Resolver(reg *secret.Registry) (*secret.Resolver, error) {
	r := secret.NewResolver(true)
	for _, name := range []string{"env", "file"} {
		p, err := reg.Create(name, nil)
		if err == nil {
			r.Register(p)
		}
	}
	for _, ps := range s.Secrets {
		p, err := reg.Create(ps.Name, ps.Config)
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}

// AggregatorConfig returns the aggregator limits from the HealthCheck
// section. Zero fields keep the aggregator defaults.
func (s *ObservabilitySetting) AggregatorConfig() health.AggregatorConfig {
	var cfg health.AggregatorConfig
	if hc := s.HealthCheck; hc != nil {
		cfg.Timeout = time.Duration(hc.TimeoutSeconds) * time.Second
		cfg.CheckTimeout = time.Duration(hc.CheckTimeoutSeconds) * time.Second
		cfg.MaxConcurrent = hc.MaxConcurrency
	}
	return cfg
}

// ObserveConfig converts the Metrics, TraceSetting and Logging sections.
func (s *ObservabilitySetting) ObserveConfig(version string) observe.Config {
	cfg := observe.Config{
		ServiceName: s.ApplicationName,
		Version:     version,
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   strings.ToLower(strings.TrimSpace(s.Logging.Level)),
			File: observe.FileConfig{
				Path:       s.Logging.File.Path,
				MaxSizeMB:  s.Logging.File.MaxSizeMB,
				MaxBackups: s.Logging.File.MaxBackups,
				MaxAgeDays: s.Logging.File.MaxAgeDays,
				Compress:   s.Logging.File.Compress,
			},
		},
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if s.IsTraceEnabled() {
		cfg.Tracing = observe.TracingConfig{
			Enabled:   true,
			Exporter:  s.TraceSetting.Exporter.exporterConfig(),
			SamplePct: 1.0,
		}
		if r := s.TraceSetting.SampleRatio; r != nil {
			cfg.Tracing.SamplePct = *r
		}
	}

	if s.IsMetricsEnabled() {
		cfg.Metrics = observe.MetricsConfig{
			Enabled:  true,
			Exporter: s.Metrics.Exporter.exporterConfig(),
			Runtime:  boolOr(s.Metrics.EnableRuntimeInstrumentation, true),
		}
	}
	return cfg
}

// HTTPConfig returns the HTTP instrumentation toggles of the enabled
// subsystems. Each toggle defaults to on.
func (s *ObservabilitySetting) HTTPConfig() observe.HTTPConfig {
	var cfg observe.HTTPConfig
	if s.IsMetricsEnabled() {
		cfg.Server = cfg.Server || boolOr(s.Metrics.EnableAspNetCoreInstrumentation, true)
		cfg.Client = cfg.Client || boolOr(s.Metrics.EnableHttpClientInstrumentation, true)
	}
	if s.IsTraceEnabled() {
		cfg.Server = cfg.Server || boolOr(s.TraceSetting.EnableAspNetCoreInstrumentation, true)
		cfg.Client = cfg.Client || boolOr(s.TraceSetting.EnableHttpClientInstrumentation, true)
	}
	return cfg
}

// BusinessMetrics returns the business metric definitions when metrics are
// enabled.
func (s *ObservabilitySetting) BusinessMetrics() []observe.BusinessMetric {
	if !s.IsMetricsEnabled() {
		return nil
	}
	defs := make([]observe.BusinessMetric, 0, len(s.Metrics.BusinessMetrics))
	for _, b := range s.Metrics.BusinessMetrics {
		defs = append(defs, observe.BusinessMetric{
			MetricName:     b.MetricName,
			Endpoint:       b.Endpoint,
			RecordSuccess:  boolOr(b.RecordSuccess, true),
			RecordFailure:  boolOr(b.RecordFailure, true),
			RecordDuration: b.RecordDuration,
		})
	}
	return defs
}

func (e *ExporterSetting) exporterConfig() exporters.Config {
	if e == nil {
		return exporters.Config{Type: exporters.TypeNone}
	}
	return exporters.Config{
		Type:      exporterType(e.Type),
		Endpoint:  strings.TrimSpace(e.Endpoint),
		Protocol:  exporterProtocol(e.Protocol),
		Processor: strings.ToLower(strings.TrimSpace(e.ProcessorType)),
		Timeout:   time.Duration(e.TimeoutMilliseconds) * time.Millisecond,
	}
}

// exporterType maps the document's exporter names onto exporters types. A
// blank type with an endpoint means OTLP.
func exporterType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "otlp", "optl":
		return exporters.TypeOTLP
	case "prometheus":
		return exporters.TypePrometheus
	case "console", "stdout":
		return exporters.TypeStdout
	case "none":
		return exporters.TypeNone
	default:
		return strings.ToLower(strings.TrimSpace(t))
	}
}

func exporterProtocol(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "grpc":
		return exporters.ProtocolGRPC
	default:
		return exporters.ProtocolHTTPProtobuf
	}
}
