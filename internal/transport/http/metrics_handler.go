package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "ridepulse/internal/errors"
	ws "ridepulse/internal/websocket"
	api "ridepulse/pkg/contracts/api/v1"
)

// HubStatsProvider reports WebSocket hub activity
type HubStatsProvider interface {
	Stats() ws.HubStats
}

// MetricsHandler exposes the Prometheus scrape endpoint and a JSON view of
// the live update hub.
type MetricsHandler struct {
	prometheus   http.Handler
	hub          HubStatsProvider
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. prometheus is nil when
// metrics are disabled.
func NewMetricsHandler(prometheus http.Handler, hub HubStatsProvider, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		prometheus:   prometheus,
		hub:          hub,
		errorHandler: errorHandler,
	}
}

// Prometheus handles GET /metrics
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("metrics"))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocketStats handles GET /api/metrics/websocket
func (h *MetricsHandler) WebSocketStats(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	render.JSON(w, r, api.Success(h.hub.Stats()))
}
