package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ridepulse/internal/analysis"
	"ridepulse/internal/charts"
	"ridepulse/internal/dataprocessing"
	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/exporter"
	"ridepulse/internal/middleware"
	"ridepulse/internal/services"
	api "ridepulse/pkg/contracts/api/v1"
)

var validate = middleware.NewValidator()

type selectionKey struct{}

// selection returns the selection stored by a selection middleware. A
// request that bypassed it selects everything.
func selection(r *http.Request) services.Selection {
	sel, _ := r.Context().Value(selectionKey{}).(services.Selection)
	return sel
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// decodeFilter reads and validates the filter parameters of r.
func decodeFilter(r *http.Request) (services.Selection, error) {
	q := api.FilterQueryFrom(r.URL.Query())
	if err := middleware.ValidateWith(validate, q); err != nil {
		return services.Selection{}, err
	}
	return selectionFrom(q)
}

// selectionFrom converts a validated filter query into a service selection.
func selectionFrom(q api.FilterQuery) (services.Selection, error) {
	sel := services.Selection{Vehicles: q.Vehicles, Statuses: q.Statuses}

	var err error
	if q.From != "" {
		if sel.From, err = time.Parse(dataprocessing.DateLayout, q.From); err != nil {
			return services.Selection{}, apierrors.ErrValidation(api.ParamFrom, "from must be a date formatted as YYYY-MM-DD")
		}
	}
	if q.To != "" {
		if sel.To, err = time.Parse(dataprocessing.DateLayout, q.To); err != nil {
			return services.Selection{}, apierrors.ErrValidation(api.ParamTo, "to must be a date formatted as YYYY-MM-DD")
		}
	}
	return sel, nil
}

// validateRequest runs the struct tags of v.
func validateRequest(v interface{}) error {
	return middleware.ValidateWith(validate, v)
}

// mapServiceError turns service and domain sentinels into API errors.
// Anything unrecognised is passed through and ends up as a 500.
func mapServiceError(err error) error {
	var apiErr *apierrors.APIError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, services.ErrDatasetUnavailable):
		return apierrors.DatasetUnavailableError(services.ErrorCode(err), err)
	case errors.Is(err, services.ErrInvalidSelection):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeInvalidParameter,
			"Invalid filter selection", err.Error())
	case errors.Is(err, services.ErrInvalidLimit):
		return apierrors.ErrValidation(api.ParamLimit, err.Error())
	case errors.Is(err, dataprocessing.ErrUnknownColumn):
		return apierrors.UnknownColumnError(unwrapDetail(err))
	case errors.Is(err, analysis.ErrNotNumeric), errors.Is(err, analysis.ErrNotCategorical):
		return apierrors.ErrValidation(api.ParamColumn, err.Error())
	case errors.Is(err, charts.ErrUnknownChart):
		return apierrors.UnknownChartError(unwrapDetail(err), charts.Names())
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", "format must be csv or xlsx")
	case errors.Is(err, analysis.ErrEmptySelection), errors.Is(err, charts.ErrNoData):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, apierrors.CodeInvalidParameter,
			"No rides match the current filters", err.Error())
	default:
		return err
	}
}

// unwrapDetail returns the text an error adds on top of its sentinel.
func unwrapDetail(err error) string {
	inner := errors.Unwrap(err)
	if inner == nil {
		return err.Error()
	}
	msg := err.Error()
	prefix := inner.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return trimQuotes(msg[len(prefix):])
	}
	return msg
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
