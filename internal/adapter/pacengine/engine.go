// Package pacengine adapts the darren/gpac PAC evaluation library to
// an opaque init/parse/find_proxy/cleanup contract. The underlying
// engine is assumed non-reentrant, so every call is serialized
// through a single mutex.
package pacengine

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/darren/gpac"
)

// Engine is the process-wide PAC evaluator. Exactly one instance
// exists per process.
type Engine struct {
	mu     sync.Mutex
	parser *gpac.Parser
}

// New constructs an idle engine. There is no separate "init" step in
// the Go binding - gpac.Parser values are ready to use once parsed -
// but the constructor is kept as its own step to mirror the
// init/parse/find_proxy/cleanup lifecycle this engine exposes.
func New() *Engine {
	return &Engine{}
}

// Parse loads a PAC script's text. gpac's loader only reads from a
// path or URL, so the script is written to a short-lived temp file
// first; this is the one seam where the "opaque black box" contract
// leaks an implementation detail into this adapter.
func (e *Engine) Parse(script string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tmp, err := os.CreateTemp("", "pacproxy-*.pac")
	if err != nil {
		return fmt.Errorf("pacengine: create temp script: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return fmt.Errorf("pacengine: write temp script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pacengine: close temp script: %w", err)
	}

	parser, err := gpac.From(tmp.Name())
	if err != nil {
		return fmt.Errorf("pacengine: parse pac script: %w", err)
	}

	e.parser = parser
	return nil
}

// FindProxy evaluates FindProxyForURL(url, host) and returns the raw
// semicolon-separated suggestion text, e.g. "PROXY a:8080; DIRECT".
func (e *Engine) FindProxy(url, host string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.parser == nil {
		return "", fmt.Errorf("pacengine: find_proxy called before parse")
	}

	proxies, err := e.parser.FindProxy(url)
	if err != nil {
		return "", fmt.Errorf("pacengine: find_proxy(%s): %w", url, err)
	}

	tokens := make([]string, 0, len(proxies))
	for _, p := range proxies {
		tokens = append(tokens, p.String())
	}
	if len(tokens) == 0 {
		return "DIRECT", nil
	}
	return strings.Join(tokens, "; "), nil
}

// Close drops the loaded parser, so FindProxy fails until the next
// Parse. gpac holds no external resources (no cgo, no background
// threads), so nothing else needs releasing.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parser = nil
	return nil
}
