package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "ridepulse/internal/errors"
)

// Problem is the RFC 7807 body written by middleware that answers before a
// handler runs. Type URIs are shared with the error handler so clients can
// switch on a single set.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Trace    string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	writeProblem(w, p)
	return nil
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// middlewareProblemTypes covers the statuses middleware produces itself.
var middlewareProblemTypes = map[int]string{
	http.StatusBadRequest:           apierrors.TypeValidation,
	http.StatusNotFound:             apierrors.TypeNotFound,
	http.StatusUnsupportedMediaType: "/errors/unsupported-media-type",
	http.StatusTooManyRequests:      apierrors.TypeRateLimit,
	http.StatusInternalServerError:  apierrors.TypeInternal,
	http.StatusServiceUnavailable:   apierrors.TypeServiceDown,
	http.StatusGatewayTimeout:       apierrors.TypeTimeout,
}

// ProblemFromStatus creates a Problem from an HTTP status code
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	problemType, ok := middlewareProblemTypes[status]
	if !ok {
		problemType = "/errors/unknown"
	}
	return Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}

// problemFor is ProblemFromStatus with the request path as instance.
func problemFor(r *http.Request, status int, detail string) Problem {
	p := ProblemFromStatus(status, detail, traceOf(r.Context()))
	p.Instance = r.URL.Path
	return p
}
