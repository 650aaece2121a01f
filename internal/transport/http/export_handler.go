package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/exporter"
	"ridepulse/internal/middleware"
	api "ridepulse/pkg/contracts/api/v1"
)

// exportBaseName prefixes every download file name.
const exportBaseName = "rides"

// ExportHandler streams the filtered rows as CSV or XLSX. Nothing is
// written on the server.
type ExportHandler struct {
	service      ExportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	now          func() time.Time
}

// NewExportHandler creates an export handler
func NewExportHandler(service ExportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{format}", h.Export)
	return r
}

// Export handles GET /api/export/{format}
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := api.ExportRequest{
		FilterQuery: api.FilterQueryFrom(r.URL.Query()),
		Format:      chi.URLParam(r, "format"),
	}
	if err := validateRequest(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	sel, err := selectionFrom(req.FilterQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	filename := format.FileName(exportBaseName, h.now())
	lw := newLazyHeaderWriter(w, func(hdr http.Header) {
		hdr.Set("Content-Type", format.ContentType())
		hdr.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		hdr.Set("Cache-Control", "no-store")
	})

	rows, err := h.service.Export(ctx, lw, format, sel)
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.Bool("partial", lw.Started()),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(ctx)),
		)
		if !lw.Started() {
			h.errorHandler.HandleError(w, r, mapServiceError(err))
		}
		return
	}

	h.logger.InfoContext(ctx, "export streamed",
		slog.String("format", string(format)),
		slog.String("filename", filename),
		slog.Int("rows", rows),
	)
}
