package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/middleware"
	api "ridepulse/pkg/contracts/api/v1"
)

// AnalysisHandler serves the statistics of a filtered selection. Every
// endpoint accepts the from, to, vehicle and status query parameters.
type AnalysisHandler struct {
	service      AnalysisService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(service AnalysisService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.SelectionCtx)

	r.Get("/kpis", h.GetKPIs)
	r.Get("/breakdowns", h.GetBreakdowns)
	r.Get("/distributions", h.GetDistributions)
	r.Get("/dispersion", h.GetDispersion)
	r.Get("/hypothesis", h.GetHypothesis)
	r.Get("/rows", h.GetRows)
	r.Get("/report", h.GetReport)
	r.Get("/stats", h.GetColumnStats)
	return r
}

// SelectionCtx parses the filter parameters once and stores the selection
// in the request context.
func (h *AnalysisHandler) SelectionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sel, err := decodeFilter(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), selectionKey{}, sel)))
	})
}

// GetKPIs handles GET /api/analysis/kpis
func (h *AnalysisHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs(r.Context(), selection(r))
	if err != nil {
		h.fail(w, r, "kpis", err)
		return
	}
	render.JSON(w, r, api.Success(kpis))
}

// GetBreakdowns handles GET /api/analysis/breakdowns
func (h *AnalysisHandler) GetBreakdowns(w http.ResponseWriter, r *http.Request) {
	sec, err := h.service.Breakdowns(r.Context(), selection(r))
	if err != nil {
		h.fail(w, r, "breakdowns", err)
		return
	}
	render.JSON(w, r, api.Success(sec))
}

// GetDistributions handles GET /api/analysis/distributions
func (h *AnalysisHandler) GetDistributions(w http.ResponseWriter, r *http.Request) {
	sec, err := h.service.Distributions(r.Context(), selection(r))
	if err != nil {
		h.fail(w, r, "distributions", err)
		return
	}
	render.JSON(w, r, api.Success(sec))
}

// GetDispersion handles GET /api/analysis/dispersion
func (h *AnalysisHandler) GetDispersion(w http.ResponseWriter, r *http.Request) {
	sec, err := h.service.Dispersion(r.Context(), selection(r))
	if err != nil {
		h.fail(w, r, "dispersion", err)
		return
	}
	render.JSON(w, r, api.Success(sec))
}

// GetHypothesis handles GET /api/analysis/hypothesis
func (h *AnalysisHandler) GetHypothesis(w http.ResponseWriter, r *http.Request) {
	sec, err := h.service.Hypothesis(r.Context(), selection(r))
	if err != nil {
		h.fail(w, r, "hypothesis", err)
		return
	}
	render.JSON(w, r, api.Success(sec))
}

// GetRows handles GET /api/analysis/rows?limit=
func (h *AnalysisHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	req := api.RowsRequest{}
	if raw := r.URL.Query().Get(api.ParamLimit); raw != "" {
		n, ok := parseInt(raw)
		if !ok {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(api.ParamLimit, "limit must be a valid integer"))
			return
		}
		req.Limit = n
	}
	if err := validateRequest(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sample, err := h.service.Rows(r.Context(), selection(r), req.Limit)
	if err != nil {
		h.fail(w, r, "rows", err)
		return
	}
	render.JSON(w, r, api.List(sample, len(sample.Rows)))
}

// GetReport handles GET /api/analysis/report. A failing section is reported
// inside the body; the call itself still succeeds.
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), selection(r))
	if err != nil {
		h.fail(w, r, "report", err)
		return
	}
	if unavailable := report.Unavailable(); len(unavailable) > 0 {
		h.logger.InfoContext(r.Context(), "report has unavailable sections",
			slog.Any("sections", unavailable),
			slog.Int("filtered_rows", report.FilteredRows),
		)
	}
	render.JSON(w, r, api.Success(report))
}

// GetColumnStats handles GET /api/analysis/stats?column=
func (h *AnalysisHandler) GetColumnStats(w http.ResponseWriter, r *http.Request) {
	req := api.StatsRequest{Column: r.URL.Query().Get(api.ParamColumn)}
	if err := validateRequest(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stats, err := h.service.ColumnStats(r.Context(), selection(r), req.Column)
	if err != nil {
		h.fail(w, r, "column stats", err)
		return
	}
	render.JSON(w, r, api.Success(stats))
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, r *http.Request, view string, err error) {
	h.logger.WarnContext(r.Context(), "analysis request failed",
		slog.String("view", view),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
