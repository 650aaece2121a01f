package websocket

import (
	"errors"
	"sync"
	"time"
)

// ErrMockClosed is returned by a MockConnection after Close.
var ErrMockClosed = errors.New("connection closed")

// MockMessage represents a message for mocking
type MockMessage struct {
	Type int
	Data []byte
	Err  error
}

// MockConnection is an in-memory Connection for tests. ReadMessage blocks
// until a message is pushed with Push or the connection is closed.
type MockConnection struct {
	mu sync.Mutex

	// WriteErr, when set, is returned by every WriteMessage call
	WriteErr error
	written  []MockMessage

	incoming  chan MockMessage
	closed    chan struct{}
	closeOnce sync.Once

	ReadDeadline  time.Time
	WriteDeadline time.Time
	ReadLimit     int64
	PongHandler   func(string) error
	RemoteAddress string
}

// NewMockConnection creates a new mock connection
func NewMockConnection() *MockConnection {
	return &MockConnection{
		incoming:      make(chan MockMessage, 16),
		closed:        make(chan struct{}),
		RemoteAddress: "127.0.0.1:8080",
	}
}

// Push queues a message for ReadMessage.
func (m *MockConnection) Push(messageType int, data []byte, err error) {
	m.incoming <- MockMessage{Type: messageType, Data: data, Err: err}
}

// WriteMessage implements Connection.WriteMessage
func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.closed:
		return ErrMockClosed
	default:
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}

	m.written = append(m.written, MockMessage{Type: messageType, Data: data})
	return nil
}

// ReadMessage implements Connection.ReadMessage
func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.incoming:
		return msg.Type, msg.Data, msg.Err
	case <-m.closed:
		return 0, nil, ErrMockClosed
	}
}

// Close implements Connection.Close
func (m *MockConnection) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockConnection) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// SetReadDeadline implements Connection.SetReadDeadline
func (m *MockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDeadline = t
	return nil
}

// SetWriteDeadline implements Connection.SetWriteDeadline
func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDeadline = t
	return nil
}

// SetReadLimit implements Connection.SetReadLimit
func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

// SetPongHandler implements Connection.SetPongHandler
func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

// RemoteAddr implements Connection.RemoteAddr
func (m *MockConnection) RemoteAddr() string {
	return m.RemoteAddress
}

// Written returns a copy of every message written so far.
func (m *MockConnection) Written() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockMessage, len(m.written))
	copy(out, m.written)
	return out
}
