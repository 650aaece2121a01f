package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ridepulse/internal/shared/testutil"
)

func TestHealthService_ReadinessCheck(t *testing.T) {
	loaded := DatasetStatus{Path: "rides.csv", Loaded: true, Rows: 8, LoadedAt: time.Now()}

	tests := []struct {
		name      string
		dataset   DatasetProbe
		hub       HubProbe
		want      string
		datasetOK bool
	}{
		{"all ready", fakeDataset{loaded}, fakeHub{running: true, clients: 2}, "ready", true},
		{"not loaded", fakeDataset{DatasetStatus{Path: "rides.csv"}}, fakeHub{running: true}, "not_ready", false},
		{"load error", fakeDataset{DatasetStatus{LastError: "dataset file not found"}}, fakeHub{running: true}, "not_ready", false},
		{"hub stopped", fakeDataset{loaded}, fakeHub{}, "not_ready", true},
		{"no dataset service", nil, fakeHub{running: true}, "not_ready", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", "", "", tt.dataset, tt.hub, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.datasetOK, status.Services["dataset"].Status == "ready")
		})
	}
}

func TestHealthService_ReadinessMessages(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", "", fakeDataset{DatasetStatus{LastError: "dataset file not found: /x"}}, fakeHub{running: true, clients: 3}, logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "dataset file not found: /x", status.Services["dataset"].Message)
	assert.Equal(t, "3 clients connected", status.Services["websocket"].Message)
	assert.True(t, handler.ContainsMessage("ReadinessCheck: service not ready"))
}

func TestHealthService_HealthAndLiveness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "2024-03-01", "abc123", nil, nil, logger)
	ctx := context.Background()

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.2.3", v["version"])
	assert.Equal(t, "2024-03-01", v["build_time"])
	assert.Equal(t, "abc123", v["build_id"])
}

func TestHealthService_SystemStats(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", "", fakeDataset{DatasetStatus{Loaded: true, Rows: 8}}, fakeHub{running: true, clients: 4}, logger)

	stats := hs.SystemStats(context.Background())
	assert.Equal(t, 8, stats.Dataset.Rows)
	assert.Equal(t, 4, stats.WebSocketClients)
	assert.NotEmpty(t, stats.GoVersion)
}
