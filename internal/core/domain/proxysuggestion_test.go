package domain

import "testing"

func TestParseProxySuggestion(t *testing.T) {
	port8080 := uint16(8080)

	cases := []struct {
		name  string
		token string
		want  ProxySuggestion
	}{
		{"direct", "DIRECT", Direct},
		{"proxy without port", "PROXY upstream.example", Proxy("upstream.example", nil)},
		{"proxy with port", "PROXY upstream.example:8080", Proxy("upstream.example", &port8080)},
		{"garbage falls back to direct", "GARBAGE", Direct},
		{"bad port falls back to direct", "PROXY upstream.example:notaport", Direct},
		{"padded whitespace", "  DIRECT  ", Direct},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseProxySuggestion(tc.token)
			if got.Direct != tc.want.Direct || got.Host != tc.want.Host || !portsEqual(got.Port, tc.want.Port) {
				t.Errorf("ParseProxySuggestion(%q) = %+v, want %+v", tc.token, got, tc.want)
			}
		})
	}
}

func TestParseProxySuggestionStrict_Valid(t *testing.T) {
	port8080 := uint16(8080)

	cases := []struct {
		name  string
		token string
		want  ProxySuggestion
	}{
		{"direct", "DIRECT", Direct},
		{"proxy without port", "PROXY upstream.example", Proxy("upstream.example", nil)},
		{"proxy with port", "PROXY upstream.example:8080", Proxy("upstream.example", &port8080)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseProxySuggestionStrict(tc.token)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Direct != tc.want.Direct || got.Host != tc.want.Host || !portsEqual(got.Port, tc.want.Port) {
				t.Errorf("ParseProxySuggestionStrict(%q) = %+v, want %+v", tc.token, got, tc.want)
			}
		})
	}
}

func TestParseProxySuggestionStrict_Invalid(t *testing.T) {
	cases := []string{
		"GARBAGE",
		"PROXY",
		"PROXY :8080",
		"PROXY upstream.example:notaport",
		"",
	}

	for _, token := range cases {
		t.Run(token, func(t *testing.T) {
			if _, err := ParseProxySuggestionStrict(token); err == nil {
				t.Errorf("ParseProxySuggestionStrict(%q) expected an error", token)
			}
		})
	}
}

func portsEqual(a, b *uint16) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
