// Package metrics exposes a small Prometheus registry for the proxy's
// own operational counters. It is purely additive - a failure to bind
// its HTTP listener is logged and swallowed, never allowed to block or
// kill the proxy's main accept loop.
package metrics

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pacproxy/internal/router"
)

// Metrics holds the counters and gauge the connection handler reports
// into.
type Metrics struct {
	ConnectionsTotal      prometheus.Counter
	ConnectionsActive     prometheus.Gauge
	ResolutionsTotal      *prometheus.CounterVec
	UpstreamFailuresTotal prometheus.Counter

	registry *prometheus.Registry
}

// New builds a fresh registry with all metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacproxy_connections_total",
			Help: "Total number of downstream connections accepted.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pacproxy_connections_active",
			Help: "Number of downstream connections currently being handled.",
		}),
		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pacproxy_resolutions_total",
			Help: "Total number of proxy resolutions, by decision.",
		}, []string{"decision"}),
		UpstreamFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacproxy_upstream_failures_total",
			Help: "Total number of upstream dial failures.",
		}),
		registry: registry,
	}

	registry.MustRegister(m.ConnectionsTotal, m.ConnectionsActive, m.ResolutionsTotal, m.UpstreamFailuresTotal)
	return m
}

// Serve runs a tiny HTTP server exposing /metrics on 127.0.0.1:port
// until ctx is cancelled. A port of 0 still binds an ephemeral port,
// which is never useful here - callers should resolve a concrete port
// (or skip calling Serve entirely) before invoking this.
func (m *Metrics) Serve(ctx context.Context, port uint16, logger *slog.Logger) {
	mux := http.NewServeMux()
	registry := router.NewRouteRegistry(logger)
	registry.Register("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP, "Prometheus metrics")
	registry.WireUp(mux)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	logger.Info("metrics: listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics: server stopped", "err", err)
	}
}
