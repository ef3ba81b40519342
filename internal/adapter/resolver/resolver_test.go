package resolver

import (
	"context"
	"errors"
	"testing"

	"pacproxy/internal/core/domain"
)

type fakeEngine struct {
	parsed      string
	findProxy   string
	findErr     error
	parseCalled int
}

func (f *fakeEngine) Parse(script string) error {
	f.parseCalled++
	f.parsed = script
	return nil
}

func (f *fakeEngine) FindProxy(url, host string) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.findProxy, nil
}

func (f *fakeEngine) Close() error { return nil }

type fakeNetEnv struct {
	info domain.WPADInfo
	err  error
}

func (f *fakeNetEnv) GetWPADInfo(ctx context.Context) (domain.WPADInfo, error) {
	return f.info, f.err
}

type fakeFetcher struct {
	body string
	ok   bool
}

func (f *fakeFetcher) RetrieveFirstWorkingURL(ctx context.Context, urls []string) (string, bool) {
	return f.body, f.ok
}

func TestResolver_Forced_NeverDiscovers(t *testing.T) {
	engine := &fakeEngine{}
	netEnv := &fakeNetEnv{info: domain.WPADInfo{Domains: []string{"corp.example"}}}
	fetcher := &fakeFetcher{ok: true, body: "script"}

	r := New(engine, netEnv, fetcher, "", nil)
	port := uint16(8080)
	r.SetForced(domain.Proxy("fixed.example", &port))

	r.Reload(context.Background())

	got, err := r.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Host != "fixed.example" || got.Port == nil || *got.Port != 8080 {
		t.Errorf("got %+v, want forced proxy", got)
	}
	if engine.parseCalled != 0 {
		t.Errorf("forced resolver should never call Parse")
	}
}

func TestResolver_DiscoveryFindsScript(t *testing.T) {
	engine := &fakeEngine{findProxy: "PROXY upstream.example:3128"}
	netEnv := &fakeNetEnv{info: domain.WPADInfo{Domains: []string{"corp.example"}}}
	fetcher := &fakeFetcher{ok: true, body: "function FindProxyForURL(){}"}

	r := New(engine, netEnv, fetcher, "", nil)
	r.Reload(context.Background())

	got, err := r.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Host != "upstream.example" {
		t.Errorf("got %+v, want upstream.example", got)
	}
	if engine.parsed == "" {
		t.Errorf("expected engine to have received the fetched script")
	}
}

func TestResolver_DiscoveryFindsNothing_FallsBackDirect(t *testing.T) {
	engine := &fakeEngine{}
	netEnv := &fakeNetEnv{info: domain.WPADInfo{}}
	fetcher := &fakeFetcher{ok: false}

	r := New(engine, netEnv, fetcher, "", nil)
	r.Reload(context.Background())

	got, err := r.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDirect() {
		t.Errorf("got %+v, want Direct", got)
	}
}

func TestResolver_NetworkEnvironmentError_FallsBackDirect(t *testing.T) {
	engine := &fakeEngine{}
	netEnv := &fakeNetEnv{err: errors.New("dbus unavailable")}
	fetcher := &fakeFetcher{ok: true, body: "unused"}

	r := New(engine, netEnv, fetcher, "", nil)
	r.Reload(context.Background())

	got, err := r.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDirect() {
		t.Errorf("got %+v, want Direct", got)
	}
}

func TestResolver_WPADURLOverride_SkipsNetworkEnvironment(t *testing.T) {
	engine := &fakeEngine{findProxy: "DIRECT"}
	netEnv := &fakeNetEnv{err: errors.New("should not be called")}
	fetcher := &fakeFetcher{ok: true, body: "script"}

	r := New(engine, netEnv, fetcher, "http://pac.example/proxy.pac", nil)
	r.Reload(context.Background())

	got, err := r.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDirect() {
		t.Errorf("got %+v, want Direct", got)
	}
}
