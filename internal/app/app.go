// Package app wires every component into a running process: it is the
// only place that knows about all of config, logger, pacengine,
// netenv, fetcher, resolver, proxyconn, notify, metrics, and server at
// once.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"pacproxy/internal/adapter/fetcher"
	"pacproxy/internal/adapter/metrics"
	"pacproxy/internal/adapter/netenv"
	"pacproxy/internal/adapter/notify"
	"pacproxy/internal/adapter/pacengine"
	"pacproxy/internal/adapter/proxyconn"
	"pacproxy/internal/adapter/resolver"
	"pacproxy/internal/config"
	"pacproxy/internal/core/ports"
	"pacproxy/internal/server"
)

// Application owns every long-lived component for one run of the
// proxy.
type Application struct {
	logger  *slog.Logger
	cleanup func()

	engine   *pacengine.Engine
	resolver *resolver.Resolver
	srv      *server.Server

	metrics        *metrics.Metrics
	metricsPort    uint16
	metricsEnabled bool
}

// New builds every component from opts but does not start accepting
// connections yet - call Start for that.
func New(opts *config.Options, logger *slog.Logger, cleanup func()) (*Application, error) {
	engine := pacengine.New()

	var netEnv ports.NetworkEnvironment
	dbusEnv, err := netenv.NewDBusNetworkEnvironment()
	if err != nil {
		logger.Warn("app: network environment discovery unavailable, falling back to stub", "err", err)
		netEnv = netenv.NewStubNetworkEnvironment()
	} else {
		netEnv = dbusEnv
	}

	fetch := fetcher.New()
	res := resolver.New(engine, netEnv, fetch, opts.WPADURL, logger)
	if opts.ForceProxy != nil {
		res.SetForced(*opts.ForceProxy)
	}

	m := metrics.New()
	handler := proxyconn.New(res, &net.Dialer{}, logger, m)

	var notifier ports.Notifier
	if opts.Systemd {
		notifier = notify.NewSystemdNotifier()
	} else {
		notifier = notify.NewNoopNotifier()
	}

	srv := server.New(opts.Port, handler, res, notifier, logger)

	metricsPort, metricsEnabled := opts.EffectiveMetricsPort()

	return &Application{
		logger:         logger,
		cleanup:        cleanup,
		engine:         engine,
		resolver:       res,
		srv:            srv,
		metrics:        m,
		metricsPort:    metricsPort,
		metricsEnabled: metricsEnabled,
	}, nil
}

// Start loads the initial proxy resolution behavior and runs the
// listener and (if enabled) metrics server until ctx is cancelled.
// Start blocks until the listener's accept loop exits.
func (a *Application) Start(ctx context.Context) error {
	a.resolver.Reload(ctx)

	if a.metricsEnabled {
		go a.metrics.Serve(ctx, a.metricsPort, a.logger)
	}

	if err := a.srv.Run(ctx); err != nil {
		return fmt.Errorf("app: server: %w", err)
	}
	return nil
}

// RequestReload asks the server to re-run WPAD discovery. Exposed so
// main can wire it to a SIGHUP handler; the server coalesces bursts.
func (a *Application) RequestReload() {
	a.srv.RequestReload()
}

// Stop releases the PAC engine and flushes any file-backed log sinks.
// In-flight connection handlers are not cancelled; the caller decides
// how long to wait for them to drain before exiting the process.
func (a *Application) Stop(ctx context.Context) error {
	if err := a.engine.Close(); err != nil {
		a.logger.Warn("app: pac engine cleanup failed", "err", err)
	}
	a.cleanup()
	return nil
}
