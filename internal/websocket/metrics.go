package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records hub activity as OpenTelemetry instruments. Every method is
// a no-op on a nil receiver.
type Metrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	messagesTotal      metric.Int64Counter
	messageBytes       metric.Int64Counter
	droppedMessages    metric.Int64Counter
	broadcasts         metric.Int64Counter
	clientCount        metric.Int64Gauge
}

// NewMetrics registers the WebSocket instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.connectionsTotal, err = meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"),
	); err != nil {
		return nil, err
	}

	if m.connectionsActive, err = meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"),
	); err != nil {
		return nil, err
	}

	if m.connectionDuration, err = meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Duration of WebSocket connections"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.messagesTotal, err = meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of WebSocket messages"),
	); err != nil {
		return nil, err
	}

	if m.messageBytes, err = meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Total bytes of WebSocket messages"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	if m.droppedMessages, err = meter.Int64Counter(
		"websocket_dropped_messages_total",
		metric.WithDescription("Messages dropped because a queue was full"),
	); err != nil {
		return nil, err
	}

	if m.broadcasts, err = meter.Int64Counter(
		"websocket_broadcasts_total",
		metric.WithDescription("Broadcast operations by message type"),
	); err != nil {
		return nil, err
	}

	if m.clientCount, err = meter.Int64Gauge(
		"websocket_client_count",
		metric.WithDescription("Current number of connected WebSocket clients"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordConnection records a newly registered client.
func (m *Metrics) RecordConnection(ctx context.Context, clients int) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
	m.clientCount.Record(ctx, int64(clients))
}

// RecordDisconnection records a client leaving after d.
func (m *Metrics) RecordDisconnection(ctx context.Context, d time.Duration, reason string, clients int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("disconnect_reason", reason))
	m.connectionsActive.Add(ctx, -1, attrs)
	m.connectionDuration.Record(ctx, d.Seconds(), attrs)
	m.clientCount.Record(ctx, int64(clients))
}

// RecordMessage records one message in direction "inbound" or "outbound".
func (m *Metrics) RecordMessage(ctx context.Context, direction string, size int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("direction", direction))
	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageBytes.Add(ctx, int64(size), attrs)
}

// RecordDropped records a message that could not be queued.
func (m *Metrics) RecordDropped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.droppedMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("drop_reason", reason)))
}

// RecordBroadcast records one fan-out of messageType. failed counts the
// clients dropped because their send buffer was full.
func (m *Metrics) RecordBroadcast(ctx context.Context, messageType string, failed int) {
	if m == nil {
		return
	}
	m.broadcasts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("message_type", messageType),
		attribute.Bool("partial", failed > 0),
	))
}
