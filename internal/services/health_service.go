package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// DatasetProbe reports the state of the served dataset.
type DatasetProbe interface {
	Status() DatasetStatus
}

// HubProbe reports the state of the WebSocket hub.
type HubProbe interface {
	Running() bool
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	dataset   DatasetProbe
	hub       HubProbe
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64       `json:"uptime_seconds"`
	Dataset          DatasetStatus `json:"dataset"`
	WebSocketClients int           `json:"websocket_clients"`
	Goroutines       int           `json:"goroutines"`
	GoVersion        string        `json:"go_version"`
	OS               string        `json:"os"`
	Arch             string        `json:"arch"`
}

// NewHealthService creates a health service. hub may be nil when the
// WebSocket feature is off.
func NewHealthService(version, buildTime, buildID string, dataset DatasetProbe, hub HubProbe, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		dataset:   dataset,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once a dataset has been loaded and the hub
// is running.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "ReadinessCheck: service not ready",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}
	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.dataset != nil {
		stats.Dataset = hs.dataset.Status()
	}
	if hs.hub != nil {
		stats.WebSocketClients = hs.hub.ClientCount()
	}
	return stats
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset service not initialized"}
	}

	st := hs.dataset.Status()
	switch {
	case st.Loaded:
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("%d rides loaded from %s", st.Rows, st.Path),
			Uptime:  time.Since(st.LoadedAt).Round(time.Second).String(),
		}
	case st.LastError != "":
		return ServiceHealth{Status: "not_ready", Message: st.LastError}
	default:
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded yet"}
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil || !hs.hub.Running() {
		return ServiceHealth{Status: "not_ready", Message: "WebSocket hub is not running"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).Round(time.Second).String(),
	}
}
