package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"albumsvc/internal/config"
	"albumsvc/internal/infrastructure"
	"albumsvc/pkg/contracts/events"
)

// Disconnect reasons reported to metrics
const (
	ReasonPeerClosed  = "peer_closed"
	ReasonReadError   = "read_error"
	ReasonWriteError  = "write_error"
	ReasonShutdown    = "shutdown"
	ReasonIdleTimeout = "idle_timeout"
)

// SessionConfig bounds one session's reads and writes
type SessionConfig struct {
	// Maximum message size allowed from peer
	MaxMessageSize int64
	// Time allowed to write a message to the peer
	WriteWait time.Duration
	// Time allowed to read the next message or pong from the peer
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than PongWait
	PingPeriod time.Duration
}

// NewSessionConfig adapts the websocket section of the application config.
func NewSessionConfig(cfg config.WebSocketConfig) SessionConfig {
	return SessionConfig{
		MaxMessageSize: cfg.MaxMessageSize,
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		PingPeriod:     cfg.PingPeriod,
	}.withDefaults()
}

// withDefaults fills zero fields from the package defaults
func (c SessionConfig) withDefaults() SessionConfig {
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = config.WebSocketMaxMessageSize
	}
	if c.WriteWait <= 0 {
		c.WriteWait = config.WebSocketWriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = config.WebSocketPongWait
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = (c.PongWait * 9) / 10
	}
	return c
}

// Session is one upgraded connection running the echo loop. It owns conn
// exclusively; replies are written strictly in the order messages arrive
// and message N+1 is not read until reply N has been written.
type Session struct {
	id          string
	conn        Connection
	cfg         SessionConfig
	logger      *slog.Logger
	metrics     MetricsRecorder
	connectedAt time.Time

	// mu serializes state changes with control frames from the pinger
	mu    sync.Mutex
	state events.SessionState

	messagesReceived int64
	messagesSent     int64
}

// NewSession creates a session in the Open state. A nil metrics disables
// metrics.
func NewSession(conn Connection, cfg SessionConfig, logger *slog.Logger, metrics MetricsRecorder) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	id := uuid.New().String()
	return &Session{
		id:   id,
		conn: conn,
		cfg:  cfg.withDefaults(),
		logger: logger.With(
			slog.String("component", "websocket.session"),
			slog.String("session_id", id),
		),
		metrics:     metrics,
		connectedAt: time.Now(),
		state:       events.SessionStateOpen,
	}
}

// ID returns the session id used in logs
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() events.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state events.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run executes the echo loop until the peer goes away, a read or write
// fails, or ctx is cancelled. It always leaves the session Closed with the
// connection released. A nil error means the session ended normally.
func (s *Session) Run(ctx context.Context) error {
	s.metrics.RecordSessionStarted(ctx)
	s.logger.InfoContext(ctx, "WebSocket session opened",
		slog.String("remote_addr", s.conn.RemoteAddr()))

	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.keepAlive(ctx, done)
	}()

	reason, err := s.loop(ctx)

	close(done)
	wg.Wait()

	s.setState(events.SessionStateClosed)
	_ = s.conn.Close()

	duration := time.Since(s.connectedAt)
	s.metrics.RecordSessionEnded(ctx, duration, reason)

	attrs := []any{
		slog.String("reason", reason),
		slog.Duration("duration", duration),
		slog.Int64("messages_received", s.messagesReceived),
		slog.Int64("messages_sent", s.messagesSent),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.DebugContext(ctx, "WebSocket session closed", attrs...)

	return err
}

// loop reads and answers messages. It returns the disconnect reason and
// the terminal error, nil for an orderly close by the peer.
func (s *Session) loop(ctx context.Context) (string, error) {
	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ReasonShutdown, nil
			}
			reason := classifyReadError(err)
			if reason == ReasonPeerClosed {
				return reason, nil
			}
			s.metrics.RecordSessionError(ctx, reason)
			return reason, err
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))

		s.messagesReceived++
		isText := messageType == websocket.TextMessage
		kind := "text"
		if !isText {
			kind = "binary"
		}
		s.metrics.RecordMessageReceived(ctx, kind, len(payload))

		reply := events.Reply(isText, payload)
		if reply == events.NotTextReply {
			s.logger.DebugContext(ctx, "Non-text message received",
				slog.Int("message_type", messageType),
				slog.Int("size", len(payload)))
		}

		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			s.setState(events.SessionStateClosing)
			s.metrics.RecordSessionError(ctx, ReasonWriteError)
			return ReasonWriteError, err
		}
		s.messagesSent++
		s.metrics.RecordMessageSent(ctx, "text", len(reply))
	}
}

// keepAlive pings the peer every PingPeriod and, when ctx is cancelled,
// sends a going-away close frame and closes the connection so the blocked
// read returns.
func (s *Session) keepAlive(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.writeControl(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(ctx, "WebSocket ping failed", slog.String("error", err.Error()))
				return
			}
		case <-ctx.Done():
			_ = s.writeControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = s.conn.Close()
			return
		}
	}
}

// writeControl writes a control frame only while the session is Open.
func (s *Session) writeControl(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != events.SessionStateOpen {
		return nil
	}
	return s.conn.WriteControl(messageType, data, time.Now().Add(s.cfg.WriteWait))
}

func classifyReadError(err error) string {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ReasonPeerClosed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonIdleTimeout
	}

	return ReasonReadError
}
