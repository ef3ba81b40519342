// Package router provides a small route table for the metrics HTTP
// server - just enough of the registry pattern to register a couple
// of handlers and print what got wired up. The rate-limit/security-
// chain middleware composition a gateway's registry would support has
// no equivalent here: this server has no request bodies to protect.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/pterm/pterm"
)

// RouteInfo describes one registered handler.
type RouteInfo struct {
	Handler     http.HandlerFunc
	Description string
	Method      string
	Order       int
}

// RouteRegistry collects routes before wiring them into a ServeMux.
type RouteRegistry struct {
	routes   map[string]RouteInfo
	logger   *slog.Logger
	orderSeq int
}

// NewRouteRegistry builds an empty registry.
func NewRouteRegistry(logger *slog.Logger) *RouteRegistry {
	return &RouteRegistry{
		routes: make(map[string]RouteInfo),
		logger: logger,
	}
}

// Register adds a route recorded as GET. The method is only shown in
// the logged route table; WireUp mounts the handler for every method.
func (r *RouteRegistry) Register(route string, handler http.HandlerFunc, description string) {
	r.RegisterWithMethod(route, handler, description, http.MethodGet)
}

// RegisterWithMethod adds a route under an explicit HTTP method.
func (r *RouteRegistry) RegisterWithMethod(route string, handler http.HandlerFunc, description, method string) {
	r.routes[route] = RouteInfo{
		Handler:     handler,
		Description: description,
		Method:      method,
		Order:       r.orderSeq,
	}
	r.orderSeq++
}

// WireUp registers every route on mux and logs the resulting table.
func (r *RouteRegistry) WireUp(mux *http.ServeMux) {
	for route, info := range r.routes {
		mux.HandleFunc(route, info.Handler)
	}
	r.logRoutesTable()
}

func (r *RouteRegistry) logRoutesTable() {
	if len(r.routes) == 0 {
		return
	}

	type routeEntry struct {
		path   string
		method string
		desc   string
		order  int
	}

	entries := make([]routeEntry, 0, len(r.routes))
	for route, info := range r.routes {
		entries = append(entries, routeEntry{
			path:   route,
			method: info.Method,
			desc:   info.Description,
			order:  info.Order,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].order < entries[j].order
	})

	tableData := [][]string{{"ROUTE", "METHOD", "DESCRIPTION"}}
	for _, entry := range entries {
		tableData = append(tableData, []string{entry.path, entry.method, entry.desc})
	}

	r.logger.Info("router: registered routes", "count", len(entries))
	tableString, _ := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	fmt.Print(tableString)
}

// GetRoutes returns the registered routes, keyed by path.
func (r *RouteRegistry) GetRoutes() map[string]RouteInfo {
	return r.routes
}
