// Package api contains the request and response contracts of the HTTP API.
// Version v1 represents the current stable API version.
package api

import "net/url"

// Filter query parameter names.
const (
	ParamFrom    = "from"
	ParamTo      = "to"
	ParamVehicle = "vehicle"
	ParamStatus  = "status"
	ParamLimit   = "limit"
	ParamColumn  = "column"
)

// FilterQuery is the dashboard filter carried by analysis, chart and export
// requests. A nil Vehicles or Statuses selects every value; a non-nil empty
// slice selects none.
type FilterQuery struct {
	From     string   `json:"from,omitempty" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string   `json:"to,omitempty" query:"to" validate:"omitempty,datetime=2006-01-02"`
	Vehicles []string `json:"vehicles,omitempty" query:"vehicle"`
	Statuses []string `json:"statuses,omitempty" query:"status"`
}

// FilterQueryFrom reads the filter parameters of q. A repeatable parameter
// given only with empty values, such as "vehicle=", yields an empty set.
func FilterQueryFrom(q url.Values) FilterQuery {
	return FilterQuery{
		From:     q.Get(ParamFrom),
		To:       q.Get(ParamTo),
		Vehicles: multi(q, ParamVehicle),
		Statuses: multi(q, ParamStatus),
	}
}

func multi(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// RowsRequest asks for the leading rows of a selection. A zero Limit means
// the configured sample size.
type RowsRequest struct {
	FilterQuery
	Limit int `json:"limit" query:"limit" validate:"gte=0,lte=5000"`
}

// StatsRequest asks for the mean and spread of one numeric column.
type StatsRequest struct {
	FilterQuery
	Column string `json:"column" query:"column" validate:"required,nonblank"`
}

// ExportRequest asks for a download of the filtered rows.
type ExportRequest struct {
	FilterQuery
	Format string `json:"format" param:"format" validate:"required,export_format"`
}

// ChartRequest asks for one chart of a selection. Name may carry a .png
// suffix.
type ChartRequest struct {
	FilterQuery
	Name string `json:"name" param:"name" validate:"required,chart"`
}

// ReloadRequest asks for the dataset to be read again. The body is optional.
type ReloadRequest struct {
	Trigger string `json:"trigger,omitempty" validate:"omitempty,max=64"`
}

// ClientLogRequest is a log entry sent by the dashboard page.
type ClientLogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2048"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"omitempty,max=256"`
}
