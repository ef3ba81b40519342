// Package ports declares the interfaces that bind the proxy's
// components together, so each one can be built and tested in
// isolation from the others.
package ports

import (
	"context"
	"net"

	"pacproxy/internal/core/domain"
)

// PACEngine is the opaque PAC evaluation black box. One instance
// exists per process; implementations serialize calls to it
// themselves (pacengine.Engine holds its own mutex), so the resolver
// calls it without a lock of its own.
type PACEngine interface {
	// Parse loads a PAC script. It must be called before any FindProxy
	// call for that script's rules to take effect.
	Parse(script string) error

	// FindProxy evaluates FindProxyForURL(url, host) and returns the
	// raw, semicolon-separated suggestion string.
	FindProxy(url, host string) (string, error)

	// Close releases any resources the engine holds.
	Close() error
}

// NetworkEnvironment yields the local network's WPAD hints (real
// backend vs stub).
type NetworkEnvironment interface {
	GetWPADInfo(ctx context.Context) (domain.WPADInfo, error)
}

// PACFetcher retrieves the first PAC script that a candidate URL list
// actually serves.
type PACFetcher interface {
	RetrieveFirstWorkingURL(ctx context.Context, urls []string) (string, bool)
}

// ProxyResolver answers "how should this request be routed" and
// supports a signal-driven reload.
type ProxyResolver interface {
	FindProxy(url, host string) (domain.ProxySuggestion, error)
	Reload(ctx context.Context)
}

// Dialer opens an upstream connection. Exists so the connection
// handler can be tested against a fake network.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Notifier is the single-method readiness-notification capability:
// exactly one NotifyReady call happens, after bind.
type Notifier interface {
	NotifyReady() error
}
