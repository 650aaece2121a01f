package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ridepulse/internal/infrastructure"
	"ridepulse/pkg/contracts/events"
)

const (
	// Pending broadcasts beyond this are dropped rather than blocking the
	// caller.
	broadcastQueueSize = 64

	defaultReportInterval = 30 * time.Second
)

// outbound is one encoded message waiting to be fanned out.
type outbound struct {
	messageType string
	payload     []byte
}

// HubStats is a point in time view of hub activity.
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesReceived int64 `json:"messages_received"`
	DroppedClients   int64 `json:"dropped_clients"`
	DroppedMessages  int64 `json:"dropped_messages"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients, owned by the Run goroutine
	clients map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *Metrics
	stats   HubStats

	// Control
	quit           chan struct{}
	done           chan struct{}
	running        bool
	reportInterval time.Duration
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *Metrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:        make(map[*Client]bool),
		broadcast:      make(chan outbound, broadcastQueueSize),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger.With(slog.String("component", "websocket.hub")),
		metrics:        metrics,
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
		reportInterval: defaultReportInterval,
	}
}

// Start starts the hub's goroutines. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
	go h.reportMetrics()
}

// Running reports whether the hub loop is active.
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "normal")

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.stats.TotalConnections++
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))
	h.metrics.RecordConnection(ctx, count)

	welcome := events.NewMessage(events.MessageTypeConnect, events.Connected{
		Status:   "connected",
		Message:  "Connected to RidePulse",
		ClientID: client.id,
		Protocol: events.ProtocolVersion,
	})
	welcome.TraceID = client.traceID

	payload, err := json.Marshal(welcome)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full")
	}
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	if reason != "normal" {
		h.stats.DroppedClients++
	}
	h.mu.Unlock()

	ctx := client.context()
	connected := time.Since(client.connectedAt)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", connected))
	h.metrics.RecordDisconnection(ctx, connected, reason, count)
}

func (h *Hub) fanOut(msg outbound) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent, failed := 0, 0
	for _, client := range clients {
		select {
		case client.send <- msg.payload:
			sent++
		default:
			failed++
			h.removeClient(client, "send_buffer_full")
		}
	}

	h.mu.Lock()
	h.stats.MessagesSent += int64(sent)
	h.mu.Unlock()

	h.logger.Debug("Broadcast message",
		slog.String("message_type", msg.messageType),
		slog.Int("client_count", len(clients)),
		slog.Int("message_size", len(msg.payload)))
	if failed > 0 {
		h.logger.Warn("Some clients failed to receive broadcast",
			slog.Int("success_count", sent),
			slog.Int("fail_count", failed))
	}
	h.metrics.RecordBroadcast(context.Background(), msg.messageType, failed)
}

// Broadcast queues a message of messageType for every connected client. It
// never blocks: when the queue is full the message is dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastWithTrace(context.Background(), messageType, data)
}

// BroadcastWithTrace is Broadcast carrying the trace id found in ctx.
func (h *Hub) BroadcastWithTrace(ctx context.Context, messageType string, data interface{}) {
	msg := events.NewMessage(events.MessageType(messageType), data)
	msg.TraceID = infrastructure.GetTraceID(ctx)

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}

	select {
	case h.broadcast <- outbound{messageType: messageType, payload: payload}:
	default:
		h.mu.Lock()
		h.stats.DroppedMessages++
		h.mu.Unlock()
		h.metrics.RecordDropped(ctx, "broadcast_queue_full")
		h.logger.WarnContext(ctx, "Broadcast queue full, message dropped",
			slog.String("message_type", messageType))
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the hub counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.stats
	s.ActiveClients = len(h.clients)
	return s
}

func (h *Hub) recordReceived(ctx context.Context, size int) {
	h.mu.Lock()
	h.stats.MessagesReceived++
	h.mu.Unlock()
	h.metrics.RecordMessage(ctx, "inbound", size)
}

// Stop shuts the hub down and closes every client. Calling it twice is a
// no-op.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// reportMetrics periodically logs hub counters.
func (h *Hub) reportMetrics() {
	ticker := time.NewTicker(h.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return

		case <-ticker.C:
			s := h.Stats()
			h.logger.Info("WebSocket hub metrics",
				slog.Int("active_clients", s.ActiveClients),
				slog.Int64("total_connections", s.TotalConnections),
				slog.Int64("messages_sent", s.MessagesSent),
				slog.Int64("messages_received", s.MessagesReceived),
				slog.Int("broadcast_queue", len(h.broadcast)),
			)
		}
	}
}
