// Package events contains the message contracts pushed to dashboard clients
// over the WebSocket connection.
package events

import (
	"time"
)

// ProtocolVersion is bumped whenever a payload changes shape.
const ProtocolVersion = "1.0"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle
	MessageTypeDatasetReloaded MessageType = "dataset:reloaded"
	MessageTypeDatasetError    MessageType = "dataset:error"

	// Connection messages
	MessageTypeConnect   MessageType = "connect"
	MessageTypeHeartbeat MessageType = "heartbeat"
)

// Message is the envelope of every server to client message.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// NewMessage stamps a message with the current time.
func NewMessage(t MessageType, data interface{}) Message {
	return Message{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// Connected is sent to a client right after it registers.
type Connected struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
	Protocol string `json:"protocol"`
}

// DatasetReloaded announces that a new version of the rides file was cleaned
// and is now served. Clients refetch whatever they display.
type DatasetReloaded struct {
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	ModTime   time.Time `json:"mod_time"`
	LoadedAt  time.Time `json:"loaded_at"`
	Complete  bool      `json:"complete"`
	Extra     []string  `json:"extra_columns,omitempty"`
	Triggered string    `json:"triggered_by"`
}

// DatasetError reports a failed reload. WasLoaded tells clients that the
// data they currently display is no longer served.
type DatasetError struct {
	Path      string `json:"path"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	WasLoaded bool   `json:"was_loaded"`
}
