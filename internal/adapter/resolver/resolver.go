// Package resolver implements the proxy resolution state machine: it
// decides, for each destination, whether to connect DIRECT or through
// a named upstream proxy, either because the operator forced a single
// answer or because a WPAD-discovered PAC script says so.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pacproxy/internal/adapter/wpaddiscovery"
	"pacproxy/internal/core/domain"
	"pacproxy/internal/core/ports"
)

// Resolver answers FindProxy queries and knows how to refresh its
// WPAD-discovered behavior on demand.
type Resolver struct {
	engine  ports.PACEngine
	netEnv  ports.NetworkEnvironment
	fetcher ports.PACFetcher
	logger  *slog.Logger

	// forced, when non-nil, makes every answer Static(*forced) and
	// disables discovery entirely - this is --force-proxy.
	forced *domain.ProxySuggestion

	// wpadURLOverride, when non-empty, replaces network-environment
	// discovery with a single fixed candidate - this is --wpad-url.
	wpadURLOverride string

	behaviorMu sync.RWMutex
	behavior   domain.ProxyResolutionBehavior

	// reloadMu serializes Reload calls. A Reload that arrives while
	// another is in flight waits for it to finish and then runs its own
	// discovery sweep, so two PAC fetches never race to parse into the
	// same engine. Coalescing of bursts happens in the caller
	// (server.Server's depth-1 reload channel), not here.
	reloadMu sync.Mutex
}

// New builds a Resolver that answers Static(Direct) until Reload loads
// a discovered behavior or SetForced pins one permanently.
func New(engine ports.PACEngine, netEnv ports.NetworkEnvironment, fetcher ports.PACFetcher, wpadURLOverride string, logger *slog.Logger) *Resolver {
	return &Resolver{
		engine:          engine,
		netEnv:          netEnv,
		fetcher:         fetcher,
		wpadURLOverride: wpadURLOverride,
		behavior:        domain.StaticBehavior(domain.Direct),
		logger:          logger,
	}
}

// SetForced pins the resolver to always answer s and makes Reload a
// no-op. Used for --force-proxy.
func (r *Resolver) SetForced(s domain.ProxySuggestion) {
	r.behaviorMu.Lock()
	defer r.behaviorMu.Unlock()
	r.forced = &s
	r.behavior = domain.StaticBehavior(s)
}

// Reload re-runs WPAD discovery and PAC fetch/parse, swapping in the
// resulting behavior. If the resolver is forced, Reload returns
// without touching the forced behavior. If discovery finds nothing, it
// swaps in Static(Direct) rather than leaving a stale script loaded -
// an operator who unplugs from a WPAD network should fall back to
// direct connections, not keep using the last office's proxy.
func (r *Resolver) Reload(ctx context.Context) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	r.behaviorMu.RLock()
	forced := r.forced
	r.behaviorMu.RUnlock()
	if forced != nil {
		return
	}

	candidates, err := r.candidateURLs(ctx)
	if err != nil {
		r.logDiscoveryFailure("networkmanager", err)
		r.setBehavior(domain.StaticBehavior(domain.Direct))
		return
	}

	script, ok := r.fetcher.RetrieveFirstWorkingURL(ctx, candidates)
	if !ok {
		r.logDiscoveryFailure("fetch", fmt.Errorf("no candidate served a PAC script"))
		r.setBehavior(domain.StaticBehavior(domain.Direct))
		return
	}

	if err := r.engine.Parse(script); err != nil {
		r.logDiscoveryFailure("parse", err)
		r.setBehavior(domain.StaticBehavior(domain.Direct))
		return
	}

	r.setBehavior(domain.WPADBehavior(script))
}

func (r *Resolver) logDiscoveryFailure(stage string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn("resolver: falling back to direct", "err", domain.NewDiscoveryError(stage, err))
}

func (r *Resolver) candidateURLs(ctx context.Context) ([]string, error) {
	if r.wpadURLOverride != "" {
		return []string{r.wpadURLOverride}, nil
	}
	info, err := r.netEnv.GetWPADInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: network environment lookup: %w", err)
	}
	return wpaddiscovery.CandidateURLs(info), nil
}

func (r *Resolver) setBehavior(b domain.ProxyResolutionBehavior) {
	r.behaviorMu.Lock()
	defer r.behaviorMu.Unlock()
	r.behavior = b
}

// FindProxy answers which route to take for a single destination.
// Static behaviors answer instantly; WPAD behaviors delegate to the
// PAC engine, which serializes its own evaluation internally, and only
// the first suggestion it returns is honored - a PAC script can
// propose a failover chain, but this resolver does not yet retry a
// suggestion's successors if the first one fails to connect.
func (r *Resolver) FindProxy(url, host string) (domain.ProxySuggestion, error) {
	r.behaviorMu.RLock()
	b := r.behavior
	r.behaviorMu.RUnlock()

	if !b.IsWPAD() {
		return *b.Static, nil
	}

	raw, err := r.engine.FindProxy(url, host)
	if err != nil {
		return domain.ProxySuggestion{}, fmt.Errorf("resolver: find_proxy: %w", err)
	}

	suggestions := domain.ParseProxySuggestions(raw)
	return suggestions[0], nil
}
