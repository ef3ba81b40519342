// Package fetcher retrieves a PAC script body from the first URL in a
// candidate list that answers with 200 OK. It never returns an error
// to its caller - a fully-failed sweep is reported as "no working
// URL", leaving the resolver to fall back to Static(Direct).
package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	connectTimeout = 2 * time.Second
	maxBodyBytes   = 1 << 20 // 1MiB, generous for a PAC script
)

// Fetcher retrieves PAC script bodies over HTTP.
type Fetcher struct {
	client *http.Client
}

// New builds a Fetcher whose requests are bounded by connectTimeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: connectTimeout,
		},
	}
}

// RetrieveFirstWorkingURL tries each URL in order and returns the body
// text of the first 200 OK response, along with true. If every
// candidate fails or returns a non-200 status, it returns ("", false).
// Candidates are tried sequentially, not in parallel, so an
// unreachable first candidate pays its own timeout before the next is
// attempted - ordering takes priority over latency here.
func (f *Fetcher) RetrieveFirstWorkingURL(ctx context.Context, urls []string) (string, bool) {
	for _, u := range urls {
		body, ok := f.tryOne(ctx, u)
		if ok {
			return body, true
		}
	}
	return "", false
}

func (f *Fetcher) tryOne(ctx context.Context, u string) (string, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return "", false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", false
	}

	return string(body), true
}
