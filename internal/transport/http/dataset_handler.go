package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/middleware"
	api "ridepulse/pkg/contracts/api/v1"
)

// DatasetHandler serves the cleaning diagnostics of the ride dataset and
// lets clients force a reload.
type DatasetHandler struct {
	service      DatasetService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler
func NewDatasetHandler(service DatasetService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/classification", h.GetClassification)
	r.Get("/options", h.GetOptions)
	r.With(middleware.AuditLog(h.logger)).Post("/reload", h.Reload)
	return r
}

// GetSummary handles GET /api/dataset/summary
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "failed to load dataset summary", err)
		return
	}
	render.JSON(w, r, api.Success(summary))
}

// GetClassification handles GET /api/dataset/classification
func (h *DatasetHandler) GetClassification(w http.ResponseWriter, r *http.Request) {
	rows := h.service.Classification()
	render.JSON(w, r, api.List(rows, len(rows)))
}

// GetOptions handles GET /api/dataset/options
func (h *DatasetHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Options(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list filter options", err)
		return
	}
	render.JSON(w, r, api.Success(options))
}

// Reload handles POST /api/dataset/reload
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	var req api.ReloadRequest
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if err := validateRequest(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.Trigger == "" {
		req.Trigger = "api"
	}

	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("trigger", req.Trigger),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	summary, err := h.service.Reload(r.Context(), req.Trigger)
	if err != nil {
		h.fail(w, r, "dataset reload failed", err)
		return
	}

	render.JSON(w, r, api.Success(api.ReloadResponse{
		Path:      summary.Path,
		Rows:      summary.Rows,
		LoadedAt:  summary.LoadedAt,
		Triggered: req.Trigger,
	}))
}

func (h *DatasetHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
