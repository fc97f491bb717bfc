package checkers

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/health"
)

func TestPingHost(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"8.8.8.8", "8.8.8.8"},
		{" gateway.local ", "gateway.local"},
		{"gateway.local:443", "gateway.local"},
		{"https://api.example.com/v1", "api.example.com"},
		{"example.com/", "example.com"},
		{"[::1]:80", "::1"},
	}

	for _, tt := range tests {
		if got := pingHost(tt.in); got != tt.want {
			t.Errorf("pingHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNetwork_UnresolvableHost(t *testing.T) {
	c := NewNetwork("GATEWAY", "healthops-test.invalid", 100*time.Millisecond)

	result := c.Check(context.Background())
	if result.Status != health.StatusUnhealthy {
		t.Errorf("Status = %v, want Unhealthy", result.Status)
	}
	if result.Error == nil {
		t.Error("Error = nil, want the resolve error")
	}
}

func TestNetwork_Name(t *testing.T) {
	c := NewNetwork("GATEWAY", "10.0.0.1", time.Second, WithPrivileged(true))
	if c.Name() != "GATEWAY" || !c.privileged {
		t.Errorf("NewNetwork() = %+v", c)
	}
}
