package checkers

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/jonwraymond/healthops/health"
)

// Network pings a host with a single ICMP echo.
type Network struct {
	name       string
	host       string
	timeout    time.Duration
	privileged bool
}

// NetworkOption configures a Network checker.
type NetworkOption func(*Network)

// WithPrivileged sends raw ICMP instead of unprivileged datagram pings.
// Raw sockets need root or CAP_NET_RAW.
func WithPrivileged(privileged bool) NetworkOption {
	return func(c *Network) {
		c.privileged = privileged
	}
}

// NewNetwork creates a ping checker. host may be a bare host, host:port or
// a URL; only the host part is pinged.
func NewNetwork(name, host string, timeout time.Duration, opts ...NetworkOption) *Network {
	c := &Network{name: name, host: pingHost(host), timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the check name.
func (c *Network) Name() string {
	return c.name
}

// Check sends one echo request and waits up to the timeout for the reply.
func (c *Network) Check(ctx context.Context) health.Result {
	pinger, err := probing.NewPinger(c.host)
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("resolve %s: %v", c.host, err), err)
	}
	pinger.Count = 1
	pinger.Timeout = c.timeout
	pinger.SetPrivileged(c.privileged)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return health.Unhealthy(fmt.Sprintf("ping %s: %v", c.host, err), err)
	}

	stats := pinger.Statistics()
	details := map[string]any{"host": c.host, "addr": stats.IPAddr.String()}
	if stats.PacketsRecv == 0 {
		err := fmt.Errorf("%w from %s within %s", ErrNoReply, c.host, c.timeout)
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ErrNoReply, ctx.Err())
		}
		return health.Unhealthy(fmt.Sprintf("Ping to %s failed.", c.host), err).WithDetails(details)
	}

	details["rtt"] = stats.AvgRtt.String()
	return health.Healthy(fmt.Sprintf("Ping to %s succeeded.", c.host)).WithDetails(details)
}

func pingHost(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}
	return strings.TrimRight(s, "/")
}
