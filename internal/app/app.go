package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"albumsvc/internal/config"
	apierrors "albumsvc/internal/errors"
	"albumsvc/internal/infrastructure"
	"albumsvc/internal/router"
	"albumsvc/internal/services"
	"albumsvc/internal/store"
	ws "albumsvc/internal/websocket"
	"albumsvc/pkg/contracts"
)

// Application represents the main application container. It is fully wired
// by NewApplication and read-only afterwards.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *router.Router
	Server        *http.Server
	DB            *sql.DB
	Store         *store.InstrumentedStore
	WebSocket     *ws.Handler
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	// ownsLogFile is set when NewApplication initialized the global logger
	ownsLogFile  bool
	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApplication creates a new application instance with dependency
// injection. A nil logger initializes the global logger from cfg.Logging.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}

	a := &Application{Config: cfg}

	if logger == nil {
		l, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		a.ownsLogFile = true
	}
	a.Logger = logger

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("addr", cfg.Server.Addr()))

	if err := a.initialize(); err != nil {
		// release whatever was opened before the failure
		_ = a.Shutdown(context.Background())
		return nil, err
	}

	return a, nil
}

// initialize wires telemetry, the database, services and the router
func (a *Application) initialize() error {
	ctx := context.Background()
	cfg := a.Config

	providers, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version),
		prometheus.NewRegistry(),
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	a.Metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}

	a.DB, err = store.Open(ctx, cfg.Database, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := store.MigrateUp(a.DB, a.Logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	if err := store.RegisterDBStats(providers.Registry, a.DB); err != nil {
		return fmt.Errorf("failed to register database metrics: %w", err)
	}

	a.Store = store.NewInstrumentedStore(store.NewSQLStore(a.DB, a.Logger), providers.Tracer, a.Metrics)

	wsMetrics, err := ws.NewOTelMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create WebSocket metrics: %w", err)
	}

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, false)
	a.WebSocket = ws.NewHandler(cfg.WebSocket, cfg.Security.AllowedOrigins, a.ErrorHandler, a.Logger, wsMetrics)
	a.HealthService = services.NewHealthService(contracts.Version, a.Store, a.WebSocket, a.Logger)

	a.Router, err = a.setupRouter()
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}

	a.createServer()
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run listens on the configured address and serves until ctx is cancelled
// or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		_ = a.Shutdown(context.Background())
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or the server fails.
// Shutdown always runs before Serve returns.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the server, then the WebSocket sessions, telemetry, the
// database and finally the log file. It is safe to call more than once.
func (a *Application) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		var errs []error

		if a.Server != nil {
			if err := a.Server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown: %w", err))
			}
		}

		// hijacked connections are not tracked by http.Server
		if a.WebSocket != nil {
			if err := a.WebSocket.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}

		if a.OTelProviders != nil {
			if err := a.OTelProviders.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}

		if a.DB != nil {
			if err := a.DB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}

		a.shutdownErr = errors.Join(errs...)
		if a.shutdownErr != nil {
			infrastructure.WithError(a.Logger, a.shutdownErr).ErrorContext(ctx, "Application shutdown finished with errors")
		} else {
			a.Logger.InfoContext(ctx, "Application shutdown complete")
		}

		if a.ownsLogFile {
			_ = infrastructure.CloseLogFile()
		}
	})

	return a.shutdownErr
}
