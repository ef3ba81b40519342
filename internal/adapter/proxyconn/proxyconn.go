// Package proxyconn implements the per-connection state machine: sniff
// the preamble, classify CONNECT vs ordinary requests, resolve a route
// through the shared resolver, open the upstream connection with the
// right framing, and hand off to the splice.
package proxyconn

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pacproxy/internal/adapter/metrics"
	"pacproxy/internal/adapter/splice"
	"pacproxy/internal/codec"
	"pacproxy/internal/core/domain"
	"pacproxy/internal/core/ports"
)

const (
	defaultHTTPPort  = 80
	defaultHTTPSPort = 443
	defaultProxyPort = 3128
)

const errorPage = "<h1>Could not connect</h1>"

// Handler turns one accepted downstream connection into a spliced (or
// failed) upstream session. A Handler is stateless and safe to share
// across goroutines - all per-connection state lives on the stack of
// Handle.
type Handler struct {
	resolver ports.ProxyResolver
	dialer   ports.Dialer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New builds a Handler over the given resolver and dialer. m may be nil,
// in which case no counters are reported.
func New(resolver ports.ProxyResolver, dialer ports.Dialer, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{resolver: resolver, dialer: dialer, logger: logger, metrics: m}
}

// Handle drives one connection to completion. It never panics and
// never returns an error to the caller - the supervisor only cares
// that it eventually returns, logging is this handler's sole
// diagnostic channel.
func (h *Handler) Handle(ctx context.Context, downstream net.Conn) {
	defer downstream.Close()

	if h.metrics != nil {
		h.metrics.ConnectionsTotal.Inc()
		h.metrics.ConnectionsActive.Inc()
		defer h.metrics.ConnectionsActive.Dec()
	}

	startedAt := time.Now()
	remote := downstream.RemoteAddr().String()
	log := h.logger.With("conn_id", uuid.New().String(), "remote", remote)

	result, err := codec.ReadPreamble(downstream)
	if err != nil {
		log.Debug("proxyconn: read preamble failed", "err", domain.NewConnectionError("sniff", remote, time.Since(startedAt), err))
		return
	}

	dest, err := deriveDestination(result.Preamble)
	if err != nil {
		log.Debug("proxyconn: could not derive destination", "err", err)
		writeErrorPage(downstream)
		return
	}

	suggestion, err := h.resolver.FindProxy(dest.lookupURL, dest.host)
	if err != nil {
		log.Warn("proxyconn: resolver failed", "err", domain.NewConnectionError("resolve", remote, time.Since(startedAt), err))
		writeErrorPage(downstream)
		return
	}

	if h.metrics != nil {
		decision := "proxy"
		if suggestion.IsDirect() {
			decision = "direct"
		}
		h.metrics.ResolutionsTotal.WithLabelValues(decision).Inc()
	}

	plan := buildPlan(dest, suggestion, result.Preamble)
	log.Debug("proxyconn: routing decision", "host", dest.host, "upstream", plan.upstreamAddr, "direct", suggestion.IsDirect())

	upstream, err := h.dialer.DialContext(ctx, "tcp", plan.upstreamAddr)
	if err != nil {
		if h.metrics != nil {
			h.metrics.UpstreamFailuresTotal.Inc()
		}
		log.Warn("proxyconn: upstream dial failed", "addr", plan.upstreamAddr,
			"err", domain.NewConnectionError("dial", remote, time.Since(startedAt), err))
		writeErrorPage(downstream)
		return
	}
	defer upstream.Close()

	if plan.upstreamPreamble != nil {
		if err := codec.WritePreamble(upstream, *plan.upstreamPreamble); err != nil {
			log.Debug("proxyconn: write upstream preamble failed", "err", err)
			return
		}
		if len(result.Buffered) > 0 {
			if _, err := upstream.Write(result.Buffered); err != nil {
				log.Debug("proxyconn: flush buffered bytes failed", "err", err)
				return
			}
		}
	}

	if plan.downstreamResponse != "" {
		if _, err := downstream.Write([]byte(plan.downstreamResponse)); err != nil {
			log.Debug("proxyconn: write synthesized response failed", "err", err)
			return
		}
	}

	if err := splice.Join(downstream, upstream); err != nil {
		log.Debug("proxyconn: splice ended", "err", err)
	}
}

func writeErrorPage(downstream net.Conn) {
	downstream.Write([]byte(errorPage))
}

// destination is the parsed, resolver-ready view of a request: the
// URL/host pair to feed find_proxy, plus the host:port to fall back to
// if the suggestion is Direct.
type destination struct {
	connect   bool
	lookupURL string
	host      string
	port      uint16
}

func deriveDestination(p domain.Preamble) (destination, error) {
	if p.IsConnect() {
		host, portStr, err := net.SplitHostPort(p.URI)
		if err != nil {
			return destination{}, fmt.Errorf("proxyconn: CONNECT target %q: %w", p.URI, err)
		}
		port, err := parsePort(portStr)
		if err != nil {
			return destination{}, fmt.Errorf("proxyconn: CONNECT target %q: %w", p.URI, err)
		}
		return destination{connect: true, lookupURL: host, host: host, port: port}, nil
	}

	u, err := url.Parse(p.URI)
	if err != nil || u.Host == "" {
		return destination{}, fmt.Errorf("proxyconn: not an absolute URI: %q", p.URI)
	}

	host := u.Hostname()
	var port uint16
	if p := u.Port(); p != "" {
		parsed, err := parsePort(p)
		if err != nil {
			return destination{}, fmt.Errorf("proxyconn: invalid port in %q: %w", p, err)
		}
		port = parsed
	} else if u.Scheme == "https" {
		port = defaultHTTPSPort
	} else {
		port = defaultHTTPPort
	}

	return destination{connect: false, lookupURL: p.URI, host: host, port: port}, nil
}

func parsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// plan is the fully-decided framing for one connection: where to dial,
// what (if anything) to send upstream, and what (if anything) to
// synthesize for downstream before splicing.
type plan struct {
	upstreamAddr       string
	upstreamPreamble   *domain.Preamble
	downstreamResponse string
}

func buildPlan(dest destination, suggestion domain.ProxySuggestion, original domain.Preamble) plan {
	if !suggestion.IsDirect() {
		addr := net.JoinHostPort(suggestion.Host, strconv.Itoa(int(suggestion.PortOr(defaultProxyPort))))
		return plan{
			upstreamAddr:     addr,
			upstreamPreamble: &original,
		}
	}

	addr := net.JoinHostPort(dest.host, strconv.Itoa(int(dest.port)))

	if dest.connect {
		return plan{
			upstreamAddr:       addr,
			downstreamResponse: "HTTP/1.1 200 OK\r\n\r\n",
		}
	}

	rewritten := original
	rewritten.URI = originForm(original.URI)
	return plan{
		upstreamAddr:     addr,
		upstreamPreamble: &rewritten,
	}
}

// originForm reduces an absolute-form URI to path+query, defaulting
// the path to "/" when empty - the form origin servers expect
// (RFC 7230 §5.3.1).
func originForm(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}
