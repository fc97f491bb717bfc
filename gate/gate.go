// Package gate decides which callers may read the health report.
//
// An AllowList holds the configured caller addresses. It grows but never
// shrinks: when a caller arrives on one loopback alias (localhost, 127.0.0.1
// or ::1) every alias is merged into the list, so a list that admits
// "localhost" also admits "127.0.0.1" and "::1" from then on.
package gate

import (
	"strings"
	"sync"
)

// Wildcard admits every caller when present in the allow-list.
const Wildcard = "*"

// LoopbackAliases are treated as one address.
var LoopbackAliases = []string{"localhost", "127.0.0.1", "::1"}

// AllowList is an IP allow-list with grow-only loopback expansion.
//
// Contract:
// - Concurrency: safe for concurrent use; expansion is serialized.
// - Monotonicity: entries are only ever added.
type AllowList struct {
	mu      sync.RWMutex
	allowed map[string]struct{}
	order   []string
	all     bool
}

// New creates an AllowList from the configured addresses. An empty list, or
// one containing the wildcard, admits everyone.
func New(ips []string) *AllowList {
	a := &AllowList{allowed: make(map[string]struct{}, len(ips))}
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if ip == Wildcard {
			a.all = true
		}
		a.add(ip)
	}
	if len(a.order) == 0 {
		a.all = true
	}
	return a
}

// Allows reports whether remoteIP may read the report. A blank address is
// rejected unless everyone is admitted.
func (a *AllowList) Allows(remoteIP string) bool {
	if a.all {
		return true
	}

	remoteIP = strings.TrimSpace(remoteIP)
	if remoteIP == "" {
		return false
	}

	key := strings.ToLower(remoteIP)
	if isLoopback(key) {
		a.expandLoopback()
	}

	a.mu.RLock()
	_, ok := a.allowed[key]
	a.mu.RUnlock()
	return ok
}

// Snapshot returns the current entries in insertion order.
func (a *AllowList) Snapshot() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *AllowList) expandLoopback() {
	a.mu.RLock()
	complete := true
	for _, alias := range LoopbackAliases {
		if _, ok := a.allowed[alias]; !ok {
			complete = false
			break
		}
	}
	a.mu.RUnlock()
	if complete {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, alias := range LoopbackAliases {
		a.add(alias)
	}
}

// add must be called with mu held or before the list is shared.
func (a *AllowList) add(ip string) {
	key := strings.ToLower(ip)
	if _, ok := a.allowed[key]; ok {
		return
	}
	a.allowed[key] = struct{}{}
	a.order = append(a.order, ip)
}

func isLoopback(ip string) bool {
	for _, alias := range LoopbackAliases {
		if ip == alias {
			return true
		}
	}
	return false
}
