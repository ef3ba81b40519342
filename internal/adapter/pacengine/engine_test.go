package pacengine

import "testing"

const directScript = `function FindProxyForURL(url, host) {
	return "DIRECT";
}`

const proxyScript = `function FindProxyForURL(url, host) {
	return "PROXY upstream.example:8080; DIRECT";
}`

func TestEngine_ParseThenFindProxy_Direct(t *testing.T) {
	e := New()
	if err := e.Parse(directScript); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got, err := e.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("find_proxy failed: %v", err)
	}
	if got != "DIRECT" {
		t.Errorf("got %q, want %q", got, "DIRECT")
	}
}

func TestEngine_ParseThenFindProxy_Proxy(t *testing.T) {
	e := New()
	if err := e.Parse(proxyScript); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got, err := e.FindProxy("http://example.com/", "example.com")
	if err != nil {
		t.Fatalf("find_proxy failed: %v", err)
	}
	if got == "" {
		t.Errorf("expected a non-empty suggestion list")
	}
}

func TestEngine_FindProxyBeforeParse(t *testing.T) {
	e := New()
	if _, err := e.FindProxy("http://example.com/", "example.com"); err == nil {
		t.Errorf("expected error calling find_proxy before parse")
	}
}
