package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/config"
	"ridepulse/internal/dataprocessing"
	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/shared/testutil"
)

func newTestApp(t *testing.T, datasetPath string) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.Path = datasetPath
	cfg.Dataset.WatchInterval = 0
	cfg.Server.Port = 18080

	logger, _ := testutil.NewTestLogger(t)
	app, err := NewApplicationWithConfig(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.WebSocketHub.Stop)
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewApplicationWithConfig(t *testing.T) {
	app := newTestApp(t, testutil.WriteRideCSV(t, testutil.SampleRides()...))

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Dashboard)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.Watcher)
	assert.True(t, app.WebSocketHub.Running())
	assert.Equal(t, ":18080", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApp(t, testutil.WriteRideCSV(t, testutil.SampleRides()...))

	tests := []struct {
		target     string
		wantStatus int
		wantBody   string
	}{
		{"/api/health/live", http.StatusOK, `"status"`},
		{"/api/version", http.StatusOK, `"api_version":"v1"`},
		{"/api/dataset/summary", http.StatusOK, `"rows":8`},
		{"/api/dataset/options", http.StatusOK, `"Auto"`},
		{"/api/analysis/kpis?status=Completed", http.StatusOK, `"completed":4`},
		{"/api/analysis/kpis?from=tomorrow", http.StatusBadRequest, "/errors/validation"},
		{"/api/export/xlsx", http.StatusOK, ""},
		{"/api/metrics/websocket", http.StatusOK, `"status":"success"`},
		{"/charts", http.StatusOK, `"charts"`},
		{"/charts/radar", http.StatusNotFound, "/errors/chart/not-found"},
		{"/dashboard", http.StatusOK, "<html"},
		{"/no/such/route", http.StatusNotFound, ""},
		{"/metrics", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, app.Router, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_RootRedirect(t *testing.T) {
	app := newTestApp(t, testutil.WriteRideCSV(t, testutil.SampleRides()...))

	rec := get(t, app.Router, "/?vehicle=Bike")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard?vehicle=Bike", rec.Header().Get("Location"))
}

func TestApplication_MissingDataset(t *testing.T) {
	app := newTestApp(t, filepath.Join(t.TempDir(), "absent.csv"))

	rec := get(t, app.Router, "/api/analysis/report")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, app.Router, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Liveness does not depend on the dataset
	rec = get(t, app.Router, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_StartFailsWithoutDataset(t *testing.T) {
	app := newTestApp(t, filepath.Join(t.TempDir(), "absent.csv"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := app.Start(ctx, cancel)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataprocessing.ErrFileNotFound)
}

func TestApplication_ReloadRequiresJSON(t *testing.T) {
	app := newTestApp(t, testutil.WriteRideCSV(t, testutil.SampleRides()...))

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/reload", strings.NewReader("trigger=ui"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/dataset/reload", strings.NewReader(`{"trigger":"ui"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"triggered_by":"ui"`)
}

func TestApplication_SecurityHeaders(t *testing.T) {
	app := newTestApp(t, testutil.WriteRideCSV(t, testutil.SampleRides()...))

	req := httptest.NewRequest(http.MethodGet, "/api/health/live", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_WebSocketWithoutUpgrade(t *testing.T) {
	app := newTestApp(t, testutil.WriteRideCSV(t, testutil.SampleRides()...))

	rec := get(t, app.Router, "/ws")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/websocket/upgrade-failed")
	assert.Contains(t, rec.Body.String(), apierrors.ErrWebSocketUpgrade.Message)
}

func TestApplication_StartStop(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Path = testutil.WriteRideCSV(t, testutil.SampleRides()...)
	cfg.Dataset.WatchInterval = time.Hour
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 18181
	logger, handler := testutil.NewTestLogger(t)

	app, err := NewApplicationWithConfig(cfg, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:18181/api/health/ready")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, app.Stop(context.Background()))
	assert.False(t, app.WebSocketHub.Running())
	assert.True(t, handler.ContainsMessage("Application shutdown complete"))
}

func TestDashboardURL(t *testing.T) {
	app := &Application{Config: config.Default()}
	assert.Equal(t, "http://localhost:8080/dashboard", app.dashboardURL())

	app.Config.Server.Host = "127.0.0.1"
	app.Config.Server.Port = 9000
	assert.Equal(t, "http://127.0.0.1:9000/dashboard", app.dashboardURL())
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
	}{
		{"windows", "rundll32"},
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		name, args := browserCommand(tt.goos, "http://localhost:8080/dashboard")
		assert.Equal(t, tt.wantName, name, tt.goos)
		assert.Equal(t, "http://localhost:8080/dashboard", args[len(args)-1], tt.goos)
	}
}
