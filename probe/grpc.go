package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jonwraymond/healthops/health"
)

// GRPC probes a server with the standard gRPC health checking protocol.
type GRPC struct {
	name     string
	endpoint string
	service  string
	dialOpts []grpc.DialOption
}

// GRPCOption configures a GRPC probe.
type GRPCOption func(*GRPC)

// WithDialOptions appends dial options, e.g. an otelgrpc stats handler or
// custom transport credentials. Credentials set here override the ones
// derived from the endpoint scheme.
func WithDialOptions(opts ...grpc.DialOption) GRPCOption {
	return func(p *GRPC) {
		p.dialOpts = append(p.dialOpts, opts...)
	}
}

// NewGRPC creates a gRPC health probe. endpoint may be host:port,
// http://host:port (plaintext) or https://host:port (TLS). service is the
// name sent in the health request; empty asks about the server as a whole.
func NewGRPC(name, endpoint, service string, opts ...GRPCOption) *GRPC {
	p := &GRPC{
		name:     name,
		endpoint: strings.TrimSpace(endpoint),
		service:  service,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the check name.
func (p *GRPC) Name() string {
	return p.name
}

// Check queries the health service. SERVING is Healthy; any other status
// or a failed call is Unhealthy. The connection is closed on every path.
func (p *GRPC) Check(ctx context.Context) health.Result {
	if p.endpoint == "" {
		return health.Unhealthy("gRPC endpoint is not configured.", ErrEndpointNotConfigured)
	}

	target, creds := grpcTarget(p.endpoint)
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, p.dialOpts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("gRPC service at %s failed: %v", p.endpoint, err), err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("gRPC service at %s failed: %v", p.endpoint, err), err)
	}

	details := map[string]any{"serving_status": resp.GetStatus().String()}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return health.Unhealthy(
			fmt.Sprintf("gRPC service at %s is not serving.", p.endpoint),
			fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus()),
		).WithDetails(details)
	}
	return health.Healthy(fmt.Sprintf("gRPC service at %s is healthy.", p.endpoint)).WithDetails(details)
}

// grpcTarget strips an http(s) scheme from endpoint and picks matching
// transport credentials.
func grpcTarget(endpoint string) (string, credentials.TransportCredentials) {
	lower := strings.ToLower(endpoint)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return strings.TrimRight(endpoint[len("https://"):], "/"),
			credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	case strings.HasPrefix(lower, "http://"):
		return strings.TrimRight(endpoint[len("http://"):], "/"), insecure.NewCredentials()
	default:
		return strings.TrimRight(endpoint, "/"), insecure.NewCredentials()
	}
}
