package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetrics_ConnectionsTotalAppearsAfterIncrement(t *testing.T) {
	m := New()
	m.ConnectionsTotal.Inc()
	m.ResolutionsTotal.WithLabelValues("direct").Inc()

	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "pacproxy_connections_total 1") {
		t.Errorf("expected pacproxy_connections_total 1 in body:\n%s", body)
	}
	if !strings.Contains(body, `pacproxy_resolutions_total{decision="direct"} 1`) {
		t.Errorf("expected labeled resolution counter in body:\n%s", body)
	}
}
