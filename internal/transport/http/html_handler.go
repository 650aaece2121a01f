package http

import "net/http"

// DashboardPath is where the chart dashboard is served.
const DashboardPath = "/dashboard"

// RedirectToDashboard sends root requests to the dashboard page, keeping any
// filter query.
func RedirectToDashboard(w http.ResponseWriter, r *http.Request) {
	target := DashboardPath
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
