package wpaddiscovery

import (
	"reflect"
	"testing"

	"pacproxy/internal/core/domain"
)

func TestCandidateURLs_ExplicitOption(t *testing.T) {
	opt := "http://10.0.0.1/proxy.pac"
	got := CandidateURLs(domain.WPADInfo{WPADOption: &opt, Domains: []string{"corp.example"}})
	want := []string{"http://10.0.0.1/proxy.pac"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCandidateURLs_DomainsInOrder(t *testing.T) {
	got := CandidateURLs(domain.WPADInfo{Domains: []string{"a.example", "b.example"}})
	want := []string{"http://wpad.a.example/wpad.dat", "http://wpad.b.example/wpad.dat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCandidateURLs_Empty(t *testing.T) {
	got := CandidateURLs(domain.WPADInfo{})
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
