package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"github.com/go-chi/chi/v5"
)

var (
	// ErrDuplicateRoute is returned when a method already has a route with
	// the same pattern shape.
	ErrDuplicateRoute = errors.New("duplicate route")
	// ErrInvalidPattern is returned for malformed patterns.
	ErrInvalidPattern = errors.New("invalid route pattern")
	// ErrInvalidMethod is returned for methods outside the standard set.
	ErrInvalidMethod = errors.New("invalid route method")
)

var supportedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// Route describes one registered route.
type Route struct {
	Method  string
	Pattern string
}

// Router dispatches each request to exactly one registered handler, or
// answers 404 with an empty body.
type Router struct {
	mux    *chi.Mux
	logger *slog.Logger
	shapes map[string]Route
	routes []Route
}

// New creates an empty router.
func New(logger *slog.Logger) *Router {
	rt := &Router{
		mux:    chi.NewRouter(),
		logger: logger.With(slog.String("component", "router")),
		shapes: make(map[string]Route),
	}

	rt.mux.NotFound(notFound)
	rt.mux.MethodNotAllowed(notFound)

	return rt
}

// Use appends middleware applied to every request, matched or not.
// It must be called before the first Register.
func (rt *Router) Use(middlewares ...func(http.Handler) http.Handler) {
	rt.mux.Use(middlewares...)
}

// Register adds a route. Per-route middlewares wrap only this handler and
// run after routing, so they can see the matched pattern.
func (rt *Router) Register(method, rawPattern string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
	if _, ok := supportedMethods[method]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if handler == nil {
		return fmt.Errorf("nil handler for %s %s", method, rawPattern)
	}

	p, err := parsePattern(rawPattern)
	if err != nil {
		return err
	}

	key := method + " " + p.shape()
	if existing, dup := rt.shapes[key]; dup {
		return fmt.Errorf("%w: %s %s conflicts with %s %s", ErrDuplicateRoute, method, rawPattern, existing.Method, existing.Pattern)
	}

	route := Route{Method: method, Pattern: rawPattern}
	rt.shapes[key] = route
	rt.routes = append(rt.routes, route)

	h := requireParams(p.params(), handler)
	if len(middlewares) > 0 {
		h = chi.Chain(middlewares...).Handler(h)
	}
	rt.mux.Method(method, p.chiPattern(), h)

	rt.logger.Debug("route registered",
		slog.String("method", method),
		slog.String("pattern", rawPattern),
	)

	return nil
}

// MustRegister is Register for static route tables; it panics on error.
func (rt *Router) MustRegister(method, pattern string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) {
	if err := rt.Register(method, pattern, handler, middlewares...); err != nil {
		panic(err)
	}
}

// ServeHTTP implements http.Handler
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Match reports whether a registered route would serve method on r's path.
func (rt *Router) Match(r *http.Request, method string) bool {
	path := r.URL.RawPath
	if path == "" {
		path = r.URL.Path
	}

	rctx := chi.NewRouteContext()
	if !rt.mux.Match(rctx, method, path) {
		return false
	}
	for _, v := range rctx.URLParams.Values {
		if v == "" {
			return false
		}
	}
	return true
}

// Routes returns the registered routes ordered by pattern, then method.
func (rt *Router) Routes() []Route {
	routes := make([]Route, len(rt.routes))
	copy(routes, rt.routes)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// Param returns the value bound to the named path parameter, or "".
func Param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	// chi routed on the escaped path
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// requireParams answers 404 when a parameter would bind an empty segment.
func requireParams(names []string, next http.Handler) http.Handler {
	if len(names) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, name := range names {
			if chi.URLParam(r, name) == "" {
				notFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
