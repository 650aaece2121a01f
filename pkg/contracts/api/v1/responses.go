package api

import "time"

// Response is the envelope of every successful JSON answer.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  *int        `json:"count,omitempty"`
}

// Success wraps data in a success envelope.
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// List wraps a collection and reports its size.
func List(data interface{}, count int) Response {
	return Response{Status: "success", Data: data, Count: &count}
}

// ReloadResponse reports the dataset served after a reload.
type ReloadResponse struct {
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	LoadedAt  time.Time `json:"loaded_at"`
	Triggered string    `json:"triggered_by"`
}

// ChartList names the charts available under /charts.
type ChartList struct {
	Charts []string `json:"charts"`
	PNG    []string `json:"png"`
}
