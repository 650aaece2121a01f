package websocket

import (
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/shared/testutil"
)

func TestClient_WritePumpSendsFramesInOrder(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	client, conn := mockClient(t, hub, "")

	client.send <- []byte(`{"type":"a"}`)
	client.send <- []byte(`{"type":"b"}`)
	close(client.send)

	client.WritePump()

	written := conn.Written()
	require.Len(t, written, 3)
	assert.Equal(t, websocket.TextMessage, written[0].Type)
	assert.Equal(t, `{"type":"a"}`, string(written[0].Data))
	assert.Equal(t, `{"type":"b"}`, string(written[1].Data))
	assert.Equal(t, websocket.CloseMessage, written[2].Type)
	assert.True(t, conn.IsClosed())
	assert.Equal(t, int64(2), client.messagesSent)
}

func TestClient_WritePumpStopsOnError(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	client, conn := mockClient(t, hub, "")
	conn.WriteErr = errors.New("broken pipe")

	client.send <- []byte(`{}`)

	done := make(chan struct{})
	go func() {
		client.WritePump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}
	assert.True(t, conn.IsClosed())
	assert.True(t, handler.ContainsMessage("Error writing message to WebSocket"))
}

func TestClient_ReadPumpCountsAndUnregisters(t *testing.T) {
	hub := startedHub(t)
	client, conn := mockClient(t, hub, "trace-read")
	hub.Register(client)
	nextMessage(t, client)

	done := make(chan struct{})
	go func() {
		client.ReadPump()
		close(done)
	}()

	conn.Push(websocket.TextMessage, []byte(`{"type":"heartbeat"}`), nil)
	conn.Push(websocket.TextMessage, []byte("hello\n"), nil)
	require.Eventually(t, func() bool { return hub.Stats().MessagesReceived == 2 }, time.Second, 5*time.Millisecond)

	conn.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read pump did not stop")
	}

	waitClosed(t, client)
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, int64(maxMessageSize), conn.ReadLimit)
	assert.NotNil(t, conn.PongHandler)
}

func TestIsHeartbeat(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`{"type":"heartbeat"}`, true},
		{`{"type": "heartbeat", "ts": 1}`, true},
		{`{"type":"connect"}`, false},
		{`heartbeat`, false},
		{``, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isHeartbeat([]byte(tt.in)), tt.in)
	}
}
