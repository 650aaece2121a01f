package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ridepulse/internal/charts"
	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/middleware"
	api "ridepulse/pkg/contracts/api/v1"
)

const pngSuffix = ".png"

// ChartHandler renders the dashboard page and its individual charts for a
// filtered selection.
type ChartHandler struct {
	service      ChartService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a chart handler
func NewChartHandler(service ChartService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{name}", h.Chart)
	return r
}

// Dashboard handles GET /dashboard
func (h *ChartHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	in, err := h.service.ChartInput(r.Context(), sel)
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}

	lw := newLazyHeaderWriter(w, htmlHeaders)
	if err := charts.Dashboard(lw, in); err != nil {
		h.renderFailed(w, r, lw, "dashboard", err)
	}
}

// List handles GET /charts
func (h *ChartHandler) List(w http.ResponseWriter, r *http.Request) {
	names := charts.Names()
	png := make([]string, 0, len(names))
	for _, name := range names {
		if charts.HasPNG(name) {
			png = append(png, name+pngSuffix)
		}
	}
	render.JSON(w, r, api.Success(api.ChartList{Charts: names, PNG: png}))
}

// Chart handles GET /charts/{name} and GET /charts/{name}.png
func (h *ChartHandler) Chart(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "name")
	name, static := strings.CutSuffix(raw, pngSuffix)
	if !charts.Known(name) || (static && !charts.HasPNG(name)) {
		h.errorHandler.HandleError(w, r, apierrors.UnknownChartError(raw, charts.Names()))
		return
	}

	req := api.ChartRequest{FilterQuery: api.FilterQueryFrom(r.URL.Query()), Name: raw}
	if err := validateRequest(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	sel, err := selectionFrom(req.FilterQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if static {
		lw := newLazyHeaderWriter(w, func(hdr http.Header) {
			hdr.Set("Content-Type", "image/png")
			hdr.Set("Cache-Control", "no-store")
		})
		if err := h.service.ChartPNG(r.Context(), lw, name, sel); err != nil {
			h.renderFailed(w, r, lw, raw, err)
		}
		return
	}

	in, err := h.service.ChartInput(r.Context(), sel)
	if err != nil {
		h.fail(w, r, name, err)
		return
	}
	lw := newLazyHeaderWriter(w, htmlHeaders)
	if err := charts.Render(lw, name, in); err != nil {
		h.renderFailed(w, r, lw, name, err)
	}
}

func htmlHeaders(hdr http.Header) {
	hdr.Set("Content-Type", "text/html; charset=utf-8")
	hdr.Set("Cache-Control", "no-store")
}

func (h *ChartHandler) fail(w http.ResponseWriter, r *http.Request, chart string, err error) {
	h.logger.WarnContext(r.Context(), "chart request failed",
		slog.String("chart", chart),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}

// renderFailed reports a failure that may have happened mid-stream. Once
// bytes reached the client only a log entry is possible.
func (h *ChartHandler) renderFailed(w http.ResponseWriter, r *http.Request, lw *lazyHeaderWriter, chart string, err error) {
	if lw.Started() {
		h.logger.ErrorContext(r.Context(), "chart rendering aborted",
			slog.String("chart", chart),
			slog.String("error", err.Error()),
		)
		return
	}
	h.fail(w, r, chart, err)
}
