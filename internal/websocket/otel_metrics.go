package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics provides OpenTelemetry metrics for WebSocket sessions
type OTelMetrics struct {
	// Session metrics
	sessionsTotal   metric.Int64Counter
	sessionsActive  metric.Int64UpDownCounter
	sessionDuration metric.Float64Histogram
	sessionErrors   metric.Int64Counter

	// Message metrics
	messagesTotal metric.Int64Counter
	messageBytes  metric.Int64Counter

	// Upgrade metrics
	upgradeFailures metric.Int64Counter
}

// NewOTelMetrics creates the session instruments on meter
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	sessionsTotal, err := meter.Int64Counter(
		"websocket_sessions_total",
		metric.WithDescription("Total number of WebSocket sessions opened"),
	)
	if err != nil {
		return nil, err
	}

	sessionsActive, err := meter.Int64UpDownCounter(
		"websocket_sessions_active",
		metric.WithDescription("Number of open WebSocket sessions"),
	)
	if err != nil {
		return nil, err
	}

	sessionDuration, err := meter.Float64Histogram(
		"websocket_session_duration_seconds",
		metric.WithDescription("Duration of WebSocket sessions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sessionErrors, err := meter.Int64Counter(
		"websocket_session_errors_total",
		metric.WithDescription("Total number of WebSocket sessions ended by an error"),
	)
	if err != nil {
		return nil, err
	}

	messagesTotal, err := meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of WebSocket messages"),
	)
	if err != nil {
		return nil, err
	}

	messageBytes, err := meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Total bytes of WebSocket messages"),
	)
	if err != nil {
		return nil, err
	}

	upgradeFailures, err := meter.Int64Counter(
		"websocket_upgrade_failures_total",
		metric.WithDescription("Total number of rejected WebSocket upgrade requests"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelMetrics{
		sessionsTotal:   sessionsTotal,
		sessionsActive:  sessionsActive,
		sessionDuration: sessionDuration,
		sessionErrors:   sessionErrors,
		messagesTotal:   messagesTotal,
		messageBytes:    messageBytes,
		upgradeFailures: upgradeFailures,
	}, nil
}

// RecordSessionStarted records a new session
func (m *OTelMetrics) RecordSessionStarted(ctx context.Context) {
	m.sessionsTotal.Add(ctx, 1)
	m.sessionsActive.Add(ctx, 1)
}

// RecordSessionEnded records a closed session
func (m *OTelMetrics) RecordSessionEnded(ctx context.Context, duration time.Duration, reason string) {
	attrs := metric.WithAttributes(attribute.String("disconnect_reason", reason))

	m.sessionsActive.Add(ctx, -1)
	m.sessionDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMessageReceived records an inbound message
func (m *OTelMetrics) RecordMessageReceived(ctx context.Context, kind string, size int) {
	m.recordMessage(ctx, "inbound", kind, size)
}

// RecordMessageSent records an outbound reply
func (m *OTelMetrics) RecordMessageSent(ctx context.Context, kind string, size int) {
	m.recordMessage(ctx, "outbound", kind, size)
}

func (m *OTelMetrics) recordMessage(ctx context.Context, direction, kind string, size int) {
	attrs := metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("message_type", kind),
	)

	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageBytes.Add(ctx, int64(size), attrs)
}

// RecordSessionError records a session that ended with a read or write fault
func (m *OTelMetrics) RecordSessionError(ctx context.Context, errorType string) {
	m.sessionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error_type", errorType)))
}

// RecordUpgradeFailure records a rejected handshake
func (m *OTelMetrics) RecordUpgradeFailure(ctx context.Context, status int) {
	m.upgradeFailures.Add(ctx, 1, metric.WithAttributes(attribute.Int("status_code", status)))
}
