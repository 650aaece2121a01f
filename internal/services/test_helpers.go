package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockWebSocketHub is a mock for WebSocketHub interface
type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

// MockReloader is a mock for the watcher's Reloader.
type MockReloader struct {
	mock.Mock
	path string
}

func (m *MockReloader) Path() string { return m.path }

func (m *MockReloader) Reload(ctx context.Context, trigger string) (*DatasetSummary, error) {
	args := m.Called(ctx, trigger)
	summary, _ := args.Get(0).(*DatasetSummary)
	return summary, args.Error(1)
}

type fakeDataset struct{ status DatasetStatus }

func (f fakeDataset) Status() DatasetStatus { return f.status }

type fakeHub struct {
	running bool
	clients int
}

func (f fakeHub) Running() bool    { return f.running }
func (f fakeHub) ClientCount() int { return f.clients }
