package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// DefaultTLSPort is dialled when the host carries no port.
const DefaultTLSPort = "443"

// DefaultDialTimeout bounds the TCP connect and TLS handshake.
const DefaultDialTimeout = 10 * time.Second

// TLSCert checks that a host presents an unexpired leaf certificate.
// Chain verification is skipped: the probe inspects the certificate itself
// so expiry is caught even when trust roots live outside this process.
type TLSCert struct {
	name    string
	host    string
	timeout time.Duration
	now     func() time.Time
}

// TLSOption configures a TLSCert probe.
type TLSOption func(*TLSCert)

// WithDialTimeout overrides the connect and handshake timeout.
func WithDialTimeout(d time.Duration) TLSOption {
	return func(p *TLSCert) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock sets the time source compared against NotAfter.
func WithClock(now func() time.Time) TLSOption {
	return func(p *TLSCert) {
		if now != nil {
			p.now = now
		}
	}
}

// NewTLSCert creates a certificate probe for host, given as host or host:port.
func NewTLSCert(name, host string, opts ...TLSOption) *TLSCert {
	p := &TLSCert{
		name:    name,
		host:    strings.TrimSpace(host),
		timeout: DefaultDialTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the check name.
func (p *TLSCert) Name() string {
	return p.name
}

// Check performs a TLS handshake and inspects the peer's leaf certificate.
func (p *TLSCert) Check(ctx context.Context) health.Result {
	if p.host == "" {
		return health.Unhealthy("SSL host is not configured.", ErrEndpointNotConfigured)
	}

	addr, serverName := tlsAddress(p.host)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.timeout},
		Config: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: true, //nolint:gosec // leaf expiry is checked below
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return health.Failure("SSL check", err)
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return health.Unhealthy("SSL certificate is invalid or expired.", ErrCertificateExpired)
	}

	leaf := certs[0]
	details := map[string]any{
		"subject":  leaf.Subject.String(),
		"issuer":   leaf.Issuer.String(),
		"notAfter": leaf.NotAfter.UTC(),
	}
	if p.now().After(leaf.NotAfter) {
		return health.Unhealthy("SSL certificate is invalid or expired.",
			fmt.Errorf("%w: expired %s", ErrCertificateExpired, leaf.NotAfter.UTC().Format(time.RFC3339)),
		).WithDetails(details)
	}
	return health.Healthy("SSL certificate is valid.").WithDetails(details)
}

func tlsAddress(host string) (addr, serverName string) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return host, h
	}
	return net.JoinHostPort(host, DefaultTLSPort), host
}
