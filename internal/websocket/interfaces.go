package websocket

import (
	"context"
	"time"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// WriteControl writes a ping, pong or close frame. It may be called
	// concurrently with WriteMessage.
	WriteControl(messageType int, data []byte, deadline time.Time) error

	// ReadMessage reads a message from the connection
	// Returns the message type and payload
	ReadMessage() (messageType int, p []byte, err error)

	// Close closes the underlying network connection without a close frame
	Close() error

	// SetReadDeadline sets the read deadline on the connection
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline sets the write deadline on the connection
	SetWriteDeadline(t time.Time) error

	// SetReadLimit sets the maximum size for a message read from the connection
	SetReadLimit(limit int64)

	// SetPongHandler sets the handler for pong messages
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// MetricsRecorder receives session lifecycle and message events
type MetricsRecorder interface {
	RecordSessionStarted(ctx context.Context)
	RecordSessionEnded(ctx context.Context, duration time.Duration, reason string)
	RecordMessageReceived(ctx context.Context, kind string, size int)
	RecordMessageSent(ctx context.Context, kind string, size int)
	RecordSessionError(ctx context.Context, errorType string)
}

type nopMetrics struct{}

func (nopMetrics) RecordSessionStarted(context.Context) {}
func (nopMetrics) RecordSessionEnded(context.Context, time.Duration, string) {}
func (nopMetrics) RecordMessageReceived(context.Context, string, int) {}
func (nopMetrics) RecordMessageSent(context.Context, string, int) {}
func (nopMetrics) RecordSessionError(context.Context, string) {}
