package setting

import (
	"os"
	"path/filepath"
	"strings"
)

// ObservabilitySetting is the root of the settings document.
type ObservabilitySetting struct {
	ApplicationName string
	AllowedIPs      []string

	// TrustProxyHeaders takes the client address from X-Forwarded-For,
	// X-Real-IP or Forwarded when gating /healthz.
	TrustProxyHeaders bool

	HealthCheck  *HealthCheckSetting
	Metrics      *MetricsSetting
	TraceSetting *TraceSetting

	Logging LoggingSetting
	Secrets []SecretProviderSetting
}

// HealthCheckSetting lists the dependencies to check.
type HealthCheckSetting struct {
	ApplicationName string
	Items           []HealthCheckItem

	// TimeoutSeconds bounds one report. Zero uses the aggregator default.
	TimeoutSeconds int

	// CheckTimeoutSeconds bounds each check. Zero uses the aggregator default.
	CheckTimeoutSeconds int

	// MaxConcurrency bounds parallel checks. Zero uses the aggregator default.
	MaxConcurrency int
}

// HealthCheckItem is one configured dependency.
type HealthCheckItem struct {
	Type                    string
	Name                    string
	Endpoint                string
	AllowedFailureThreshold *int
	CdnBucketName           string
	CdnAccessKey            string
	CdnSecretKey            string
	PingTimeoutMilliSecond  *int
	UserName                string
	Password                string
	Tags                    []string
}

// ExporterSetting selects and configures a telemetry exporter.
type ExporterSetting struct {
	// Type is Otlp, Prometheus, Console or None. "OPTL" is read as Otlp.
	Type string

	Endpoint string

	// Protocol is Grpc or HttpProtobuf (default).
	Protocol string

	// ProcessorType is Batch (default) or Simple.
	ProcessorType string

	TimeoutMilliseconds int
}

// MetricsSetting configures metric export.
type MetricsSetting struct {
	ApplicationName                 string
	Exporter                        *ExporterSetting
	BusinessMetrics                 []BusinessMetricSetting
	EnableAspNetCoreInstrumentation *bool
	EnableHttpClientInstrumentation *bool
	EnableRuntimeInstrumentation    *bool
}

// BusinessMetricSetting counts traffic on one request path.
// RecordSuccess and RecordFailure default to true.
type BusinessMetricSetting struct {
	MetricName     string
	Endpoint       string
	RecordSuccess  *bool
	RecordFailure  *bool
	RecordDuration bool
}

// TraceSetting configures trace export.
type TraceSetting struct {
	ApplicationName                 string
	EnableAspNetCoreInstrumentation *bool
	EnableHttpClientInstrumentation *bool
	Exporter                        *ExporterSetting
	Items                           []TraceItem

	// SampleRatio is the fraction of traces kept, 0.0 to 1.0. Nil keeps all.
	SampleRatio *float64
}

// TraceItem names a traced dependency.
type TraceItem struct {
	Type            string
	Name            string
	Endpoint        string
	JobName         string
	RecordException bool
}

// LoggingSetting configures the service logger.
type LoggingSetting struct {
	// Level is debug, info (default), warn or error.
	Level string

	// File, when Path is set, writes rotating log files.
	File LogFileSetting
}

// LogFileSetting configures rotating file output.
type LogFileSetting struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// SecretProviderSetting instantiates a secret provider by name.
type SecretProviderSetting struct {
	Name   string
	Config map[string]any
}

// IsHealthCheckEnabled reports whether any health check item is configured.
func (s *ObservabilitySetting) IsHealthCheckEnabled() bool {
	return s.HealthCheck != nil && len(s.HealthCheck.Items) > 0
}

// IsMetricsEnabled reports whether metrics have somewhere to go: an exporter
// endpoint, or the Prometheus exporter which is scraped instead.
func (s *ObservabilitySetting) IsMetricsEnabled() bool {
	if s.Metrics == nil || s.Metrics.Exporter == nil {
		return false
	}
	return strings.TrimSpace(s.Metrics.Exporter.Endpoint) != "" ||
		exporterType(s.Metrics.Exporter.Type) == "prometheus"
}

// IsTraceEnabled reports whether trace items or a trace exporter endpoint
// are configured.
func (s *ObservabilitySetting) IsTraceEnabled() bool {
	t := s.TraceSetting
	if t == nil {
		return false
	}
	return len(t.Items) > 0 || (t.Exporter != nil && strings.TrimSpace(t.Exporter.Endpoint) != "")
}

// SetApplicationNames fills a blank ApplicationName with the executable name
// and copies the result into the health check, metrics and trace sections.
func (s *ObservabilitySetting) SetApplicationNames() {
	s.ApplicationName = strings.TrimSpace(s.ApplicationName)
	if s.ApplicationName == "" {
		s.ApplicationName = executableName()
	}
	if s.HealthCheck != nil {
		s.HealthCheck.ApplicationName = s.ApplicationName
	}
	if s.Metrics != nil {
		s.Metrics.ApplicationName = s.ApplicationName
	}
	if s.TraceSetting != nil {
		s.TraceSetting.ApplicationName = s.ApplicationName
	}
}

func executableName() string {
	path, err := os.Executable()
	if err != nil {
		path = os.Args[0]
	}
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
