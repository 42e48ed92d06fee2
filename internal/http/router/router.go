// Package router is a flat route table on top of http.ServeMux.
//
// Each route is a METHOD + path pattern mapped to exactly one handler.
// Patterns use the Go 1.22 ServeMux syntax ("/records/{id}"), so path
// values are still read with r.PathValue in the handlers. What the router
// adds over a bare ServeMux:
//
//   - every unmatched request, including a known path with a method that
//     was never registered, is answered with a JSON 404 built from
//     ErrRouteNotFound instead of ServeMux's plain-text 404/405;
//   - the route table can be listed (Routes) for the index page;
//   - middleware sees the matched pattern (Pattern) to label metrics.
//
// As with any ServeMux, a GET route also answers HEAD. Routes lists only
// the methods that were registered, so HEAD never appears in the table.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/aanand-mishra/records-api/internal/utils/response"
)

// ErrRouteNotFound is reported when no route matches method + path.
var ErrRouteNotFound = errors.New("route not found")

// Route describes one entry of the table.
type Route struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// Router implements http.Handler.
type Router struct {
	mu     sync.RWMutex
	mux    *http.ServeMux
	routes map[Route]struct{}
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		mux:    http.NewServeMux(),
		routes: make(map[Route]struct{}),
	}
}

// Handle registers h for method + pattern. Registering the same pair
// twice is a programming error and panics, like ServeMux does.
func (rt *Router) Handle(method, pattern string, h http.Handler) {
	route := Route{Method: method, Pattern: pattern}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, dup := rt.routes[route]; dup {
		panic(fmt.Sprintf("router: duplicate route %s %s", method, pattern))
	}
	rt.routes[route] = struct{}{}
	rt.mux.Handle(method+" "+pattern, h)
}

// HandleFunc is Handle for plain functions.
func (rt *Router) HandleFunc(method, pattern string, h http.HandlerFunc) {
	rt.Handle(method, pattern, h)
}

// Routes returns the route table sorted by pattern, then method.
func (rt *Router) Routes() []Route {
	rt.mu.RLock()
	out := make([]Route, 0, len(rt.routes))
	for r := range rt.routes {
		out = append(out, r)
	}
	rt.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// ServeHTTP dispatches to the registered handler, or answers 404.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, pattern := rt.mux.Handler(r)
	if pattern == "" {
		// ServeMux returns an empty pattern both for unknown paths and for
		// known paths hit with the wrong method.
		err := fmt.Errorf("%w: %s %s", ErrRouteNotFound, r.Method, r.URL.Path)
		_ = response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}

	if holder, ok := r.Context().Value(patternKey{}).(*string); ok {
		*holder = pattern
	}

	// Handler only looks the route up; ServeHTTP is what fills in
	// r.PathValue for the matched pattern.
	rt.mux.ServeHTTP(w, r)
}

type patternKey struct{}

// WithPatternHolder returns a context in which the router will record the
// matched pattern into *holder. Middleware that wraps the router uses it
// to find out which route served a request.
func WithPatternHolder(ctx context.Context, holder *string) context.Context {
	return context.WithValue(ctx, patternKey{}, holder)
}
