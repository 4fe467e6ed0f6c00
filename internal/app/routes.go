package app

import (
	"fmt"
	"net/http"

	"albumsvc/internal/middleware"
	"albumsvc/internal/router"
	handlers "albumsvc/internal/transport/http"
)

// route is one entry of the static route table
type route struct {
	method  string
	pattern string
	handler http.Handler
	// ws routes skip the middleware that wraps the ResponseWriter
	ws bool
	// bare routes get no per-route middleware
	bare bool
}

// setupRouter builds the route table. Global middleware only uses
// hijack-safe writers so the upgrade endpoint can share it.
func (a *Application) setupRouter() (*router.Router, error) {
	cfg := a.Config
	rt := router.New(a.Logger)

	rt.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.StructuredLogger(a.Logger),
		middleware.Recoverer(a.ErrorHandler, a.Metrics),
		middleware.SecurityHeaders,
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.Security.AllowedOrigins,
			Logger:         a.Logger,
			RouteExists:    rt.Match,
		}),
	)

	otelMiddleware, err := middleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	validation := middleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, middleware.DefaultMaxBodySize)

	stack := []func(http.Handler) http.Handler{
		otelMiddleware.Handler,
		middleware.Timeout(cfg.Server.RequestTimeout, a.ErrorHandler),
	}
	if cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, a.Logger, a.ErrorHandler)
		stack = append(stack, limiter.Handler)
	}
	stack = append(stack, validation.ValidateRequest)

	basic := handlers.NewBasicHandler(a.Logger)
	users := handlers.NewUserHandler(validation, a.Logger)
	albums := handlers.NewAlbumHandler(a.Store, validation, a.Logger, cfg.Database.ExposeErrors)
	health := handlers.NewHealthHandler(a.HealthService, a.Logger)
	metrics := handlers.NewMetricsHandler(a.metricsExporter(), a.ErrorHandler)

	routes := []route{
		{method: http.MethodGet, pattern: "/", handler: http.HandlerFunc(basic.Index)},
		{method: http.MethodGet, pattern: "/hello2", handler: http.HandlerFunc(basic.Hello2)},
		{method: http.MethodPost, pattern: "/foo", handler: http.HandlerFunc(basic.Foo)},
		{method: http.MethodGet, pattern: "/foo/bar", handler: http.HandlerFunc(basic.FooBar)},
		{method: http.MethodGet, pattern: "/ws", handler: a.WebSocket, ws: true},
		{method: http.MethodGet, pattern: "/info_header", handler: http.HandlerFunc(basic.InfoHeader)},

		{method: http.MethodPost, pattern: "/users", handler: http.HandlerFunc(users.Create)},
		{method: http.MethodGet, pattern: "/users/:id", handler: http.HandlerFunc(users.Get)},

		{method: http.MethodGet, pattern: "/db/total_rows", handler: http.HandlerFunc(albums.TotalRows)},
		{method: http.MethodGet, pattern: "/db/query_all", handler: http.HandlerFunc(albums.QueryAll)},
		{method: http.MethodGet, pattern: "/db/insert", handler: http.HandlerFunc(albums.Insert)},
		{method: http.MethodPost, pattern: "/db/update/:id", handler: http.HandlerFunc(albums.Update)},
		{method: http.MethodGet, pattern: "/db/delete/:id", handler: http.HandlerFunc(albums.Delete)},

		{method: http.MethodGet, pattern: "/api/health", handler: http.HandlerFunc(health.HealthCheck)},
		{method: http.MethodGet, pattern: "/api/health/live", handler: http.HandlerFunc(health.LivenessCheck)},
		{method: http.MethodGet, pattern: "/api/health/ready", handler: http.HandlerFunc(health.ReadinessCheck)},
		{method: http.MethodGet, pattern: "/api/version", handler: http.HandlerFunc(health.Version)},
		{method: http.MethodGet, pattern: "/metrics", handler: metrics, bare: true},
	}

	wsStack := []func(http.Handler) http.Handler{
		middleware.WebSocketTraceMiddleware(a.OTelProviders.Tracer, a.Logger),
	}

	for _, r := range routes {
		mw := stack
		switch {
		case r.ws:
			mw = wsStack
		case r.bare:
			mw = nil
		}
		if err := rt.Register(r.method, r.pattern, r.handler, mw...); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

// metricsExporter returns the Prometheus handler, or nil when metrics are
// disabled
func (a *Application) metricsExporter() http.Handler {
	if a.Config.Telemetry.MetricExporter == "none" {
		return nil
	}
	return a.OTelProviders.PrometheusHTTP
}
