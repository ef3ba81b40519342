package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRetrieveFirstWorkingURL_SkipsFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("function FindProxyForURL(url, host) { return \"DIRECT\"; }"))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	f := New()
	body, ok := f.RetrieveFirstWorkingURL(context.Background(), []string{bad.URL, good.URL})
	if !ok {
		t.Fatalf("expected a working URL")
	}
	if body == "" {
		t.Errorf("expected non-empty body")
	}
}

func TestRetrieveFirstWorkingURL_AllFail(t *testing.T) {
	f := New()
	_, ok := f.RetrieveFirstWorkingURL(context.Background(), []string{"http://127.0.0.1:1/nope"})
	if ok {
		t.Errorf("expected failure")
	}
}

func TestRetrieveFirstWorkingURL_EmptyList(t *testing.T) {
	f := New()
	_, ok := f.RetrieveFirstWorkingURL(context.Background(), nil)
	if ok {
		t.Errorf("expected failure on empty candidate list")
	}
}
