package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"albumsvc/internal/config"
	apierrors "albumsvc/internal/errors"
	"albumsvc/internal/infrastructure"
	"albumsvc/internal/middleware"
)

// upgradeFailureRecorder is implemented by recorders that count rejected
// handshakes
type upgradeFailureRecorder interface {
	RecordUpgradeFailure(ctx context.Context, status int)
}

// Handler upgrades requests on the echo endpoint and runs one Session per
// connection. Sessions outlive the request that created them; Shutdown
// cancels them all and waits for their goroutines.
type Handler struct {
	upgrader     websocket.Upgrader
	sessionCfg   SessionConfig
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	metrics      MetricsRecorder

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewHandler creates the echo endpoint handler. allowedOrigins follows the
// CORS allow list; requests without an Origin header or from the serving host
// are always accepted.
func NewHandler(cfg config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger, metrics MetricsRecorder) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger = infrastructure.WithComponent(logger, "websocket")

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		sessionCfg:   NewSessionConfig(cfg),
		errorHandler: errorHandler,
		logger:       logger,
		metrics:      metrics,
		baseCtx:      ctx,
		cancel:       cancel,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return checkOrigin(r, allowedOrigins)
		},
		Error: h.upgradeError,
	}

	return h
}

// ServeHTTP upgrades the request and starts the session goroutine.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.handleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	// Add under mu so Shutdown never waits on a counter that is still growing.
	h.wg.Add(1)
	h.mu.Unlock()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgradeError has already responded
		h.wg.Done()
		return
	}

	ctx := h.sessionContext(r)
	session := NewSession(NewConnectionWrapper(conn), h.sessionCfg, h.logger, h.metrics)

	h.active.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.active.Add(-1)
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(ctx, "WebSocket session panicked",
					slog.String("session_id", session.ID()),
					slog.String("panic", fmt.Sprint(rec)))
				_ = conn.Close()
			}
		}()

		if err := session.Run(ctx); err != nil {
			infrastructure.WithError(h.logger, err).WarnContext(ctx, "WebSocket session ended with error",
				slog.String("session_id", session.ID()))
		}
	}()
}

// sessionContext derives the session context from the handler base context
// and carries over the request's trace identifiers.
func (h *Handler) sessionContext(r *http.Request) context.Context {
	ctx := h.baseCtx
	if traceID := infrastructure.GetTraceID(r.Context()); traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, traceID)
	} else if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		ctx = infrastructure.WithTraceID(ctx, reqID)
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		ctx = trace.ContextWithSpanContext(ctx, sc)
	}
	return ctx
}

// ActiveSessions returns the number of running sessions
func (h *Handler) ActiveSessions() int64 {
	return h.active.Load()
}

// Shutdown stops accepting upgrades, cancels every session and waits for
// them to finish or for ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "Closing WebSocket sessions",
		slog.Int64("active_sessions", h.ActiveSessions()))
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("websocket shutdown: %w", ctx.Err())
	}
}

func (h *Handler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	if rec, ok := h.metrics.(upgradeFailureRecorder); ok {
		rec.RecordUpgradeFailure(r.Context(), status)
	}

	h.logger.WarnContext(r.Context(), "WebSocket upgrade rejected",
		slog.Int("status", status),
		slog.String("reason", reason.Error()),
		slog.String("origin", r.Header.Get("Origin")))

	h.handleError(w, r, apierrors.NewWithDetails(status, apierrors.CodeWebSocketUpgrade,
		"WebSocket upgrade failed", reason.Error()))
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err *apierrors.APIError) {
	if h.errorHandler != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	http.Error(w, err.Message, err.StatusCode)
}

// checkOrigin accepts a missing Origin, an origin naming the request host,
// or one on the allow list.
func checkOrigin(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return middleware.OriginAllowed(allowedOrigins, origin)
}
