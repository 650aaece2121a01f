package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"ridepulse/internal/config"
	apierrors "ridepulse/internal/errors"
	"ridepulse/internal/infrastructure"
	customMiddleware "ridepulse/internal/middleware"
	"ridepulse/internal/services"
	handlers "ridepulse/internal/transport/http"
	ws "ridepulse/internal/websocket"
	"ridepulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	WebSocketHub  *ws.Hub
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	Watcher       *services.DatasetWatcher
	ErrorHandler  *apierrors.ErrorHandler

	stopWatcher context.CancelFunc
}

// NewApplication loads the configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig wires the application from an explicit
// configuration and logger.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.String("dataset", cfg.Dataset.Path))

	if !config.FileExists(cfg.Dataset.Path) {
		logger.Warn("Dataset file not found",
			slog.String("path", cfg.Dataset.Path),
			slog.String("action", "endpoints answer 503 until the file appears"))
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.OTel), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	hubMetrics, err := ws.NewMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create WebSocket metrics: %w", err)
	}
	hub := ws.NewHub(a.Logger, hubMetrics)
	hub.Start()
	a.WebSocketHub = hub

	a.Dashboard = services.NewDashboardService(a.Config, nil, hub, metrics, a.Logger)
	a.HealthService = services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		contracts.GitCommit,
		a.Dashboard,
		hub,
		a.Logger,
	)
	a.Watcher = services.NewDatasetWatcher(a.Dashboard, a.Config.Dataset.WatchInterval, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// These do not wrap the ResponseWriter, so the WebSocket upgrade survives them
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := handlers.NewWebSocketHandler(
		a.WebSocketHub,
		a.Config.Security.AllowedOrigins,
		a.Config.WebSocket.ReadBufferSize,
		a.Config.WebSocket.WriteBufferSize,
		a.Logger,
		a.ErrorHandler,
	)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub, a.ErrorHandler)
	r.Get("/metrics", metricsHandler.Prometheus)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers → limits → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
				Logger:         a.Logger,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r, metricsHandler)
		a.setupHTMLRoutes(r)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, metricsHandler *handlers.MetricsHandler) {
	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Get("/metrics/websocket", metricsHandler.WebSocketStats)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeValidator("application/json"))
			r.Use(validation.ValidateRequest)

			r.Mount("/dataset", handlers.NewDatasetHandler(a.Dashboard, a.Logger, a.ErrorHandler).Routes())
			r.Post("/client-log", handlers.NewClientLogHandler(a.Logger, a.ErrorHandler).Handle)
		})

		r.Mount("/analysis", handlers.NewAnalysisHandler(a.Dashboard, a.Logger, a.ErrorHandler).Routes())
		r.With(customMiddleware.TraceMiddleware("export")).
			Mount("/export", handlers.NewExportHandler(a.Dashboard, a.Logger, a.ErrorHandler).Routes())
	})
}

// setupHTMLRoutes configures the dashboard page and the chart endpoints
func (a *Application) setupHTMLRoutes(r chi.Router) {
	chartHandler := handlers.NewChartHandler(a.Dashboard, a.Logger, a.ErrorHandler)

	r.Get("/", handlers.RedirectToDashboard)
	r.With(customMiddleware.Compress(5)).Get(handlers.DashboardPath, chartHandler.Dashboard)
	r.With(customMiddleware.Compress(5)).Mount("/charts", chartHandler.Routes())
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start loads the dataset, then starts the HTTP server, the dataset watcher
// and, when configured, opens the dashboard in a browser. It fails without
// listening when the dataset cannot be loaded. cancel is called if the
// server fails later.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting HTTP server",
		slog.String("address", a.Server.Addr),
		slog.String("dataset", a.Config.Dataset.Path))

	// A dataset that cannot be loaded at startup is fatal
	snapshot, err := a.Dashboard.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}
	a.Logger.InfoContext(ctx, "Dataset ready",
		slog.Int("rows", snapshot.Clean.Len()),
		slog.Bool("complete", snapshot.Diagnostics.Complete()))

	watchCtx, stop := context.WithCancel(ctx)
	a.stopWatcher = stop
	go a.Watcher.Run(watchCtx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	url := a.dashboardURL()
	a.Logger.InfoContext(ctx, "Application started successfully", slog.String("dashboard", url))

	if a.Config.Server.OpenBrowser {
		go a.openWhenReady(ctx, url)
	}
	return nil
}

func (a *Application) dashboardURL() string {
	host := a.Config.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d%s", host, a.Config.Server.Port, handlers.DashboardPath)
}

// openWhenReady waits for the liveness endpoint and then opens url.
func (a *Application) openWhenReady(ctx context.Context, url string) {
	liveURL := fmt.Sprintf("http://localhost:%d/api/health/live", a.Config.Server.Port)

	const maxRetries = 10
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		resp, err := http.Get(liveURL)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		if err := openBrowser(url); err != nil {
			a.Logger.WarnContext(ctx, "Failed to open browser",
				slog.String("error", err.Error()),
				slog.String("url", url))
			fmt.Printf("\n%s is running at %s\n\n", config.AppName, url)
		}
		return
	}

	a.Logger.WarnContext(ctx, "Server did not become ready for browser opening",
		slog.Int("max_retries", maxRetries))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.stopWatcher != nil {
		a.stopWatcher()
	}

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		a.WebSocketHub.Stop()
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	// The run context may already be cancelled
	return a.Stop(context.Background())
}

// browserCommand returns the platform command that opens url.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// openBrowser starts the launcher without waiting for it. The launcher
// must outlive this call, so it is not tied to a context.
func openBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
