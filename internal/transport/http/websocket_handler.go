package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/middleware"
	ws "ridepulse/internal/websocket"
)

// WebSocketHandler upgrades dashboard connections and hands them to the hub
type WebSocketHandler struct {
	hub            *ws.Hub
	upgrader       websocket.Upgrader
	allowedOrigins []string
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewWebSocketHandler creates a WebSocket handler. An empty allowedOrigins
// accepts every origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, readBuffer, writeBuffer int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket_handler")),
		errorHandler:   errorHandler,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  readBuffer,
		WriteBufferSize: writeBuffer,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")),
			)
			h.errorHandler.HandleError(w, r, apierrors.ErrWebSocketUpgrade.WithStatus(status).WithDetails(reason.Error()))
		},
	}
	return h
}

// checkOrigin allows same-origin requests without an Origin header and
// otherwise consults the CORS allow list.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if middleware.OriginAllowed(h.allowedOrigins, origin) {
		return true
	}
	h.logger.WarnContext(r.Context(), "WebSocket origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.allowedOrigins),
	)
	return false
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.hub.Running() {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered through its Error callback
		return
	}

	traceID := middleware.GetRequestID(ctx)
	client := ws.ServeWS(h.hub, conn, traceID, h.logger)

	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", middleware.GetRealIP(r)),
	)
}
