package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "ridepulse/internal/errors"
	api "ridepulse/pkg/contracts/api/v1"
)

// ClientLogHandler records log entries sent by the dashboard page
type ClientLogHandler struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		logger:       logger.With(slog.String("handler", "client_log")),
		errorHandler: errorHandler,
	}
}

var clientLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Handle processes POST /api/client-log
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req api.ClientLogRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validateRequest(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	level, ok := clientLevels[req.Level]
	if !ok {
		level = slog.LevelInfo
	}

	attrs := []slog.Attr{slog.String("client_source", req.Source)}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, api.Success(nil))
}
