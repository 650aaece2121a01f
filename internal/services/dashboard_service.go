package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ridepulse/internal/analysis"
	"ridepulse/internal/charts"
	"ridepulse/internal/config"
	"ridepulse/internal/dataprocessing"
	"ridepulse/internal/exporter"
	"ridepulse/internal/infrastructure"
	"ridepulse/pkg/contracts/events"
)

// WebSocketHub interface for WebSocket communication
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// DatasetSummary describes the dataset currently served.
type DatasetSummary struct {
	Path        string                      `json:"path"`
	ModTime     time.Time                   `json:"mod_time"`
	LoadedAt    time.Time                   `json:"loaded_at"`
	Rows        int                         `json:"rows"`
	Complete    bool                        `json:"complete"`
	Diagnostics *dataprocessing.Diagnostics `json:"diagnostics"`
	Cache       dataprocessing.CacheStats   `json:"cache"`
}

// FilterOptions lists the values a client can filter on.
type FilterOptions struct {
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Vehicles []string `json:"vehicles"`
	Statuses []string `json:"statuses"`
	Rows     int      `json:"rows"`
}

// ColumnStats is the mean and spread of one numeric column of a selection.
type ColumnStats struct {
	Column string           `json:"column"`
	N      int              `json:"n"`
	Mean   analysis.Measure `json:"mean"`
	StdDev analysis.Measure `json:"std_dev"`
}

// DatasetStatus reports whether a dataset has been served and how the last
// load went.
type DatasetStatus struct {
	Path      string    `json:"path"`
	Loaded    bool      `json:"loaded"`
	Rows      int       `json:"rows"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// DashboardService runs the ride analysis for HTTP handlers and the CLI.
// Every call reads one immutable snapshot from the cache, filters it and
// computes the requested view.
type DashboardService struct {
	path     string
	analysis config.AnalysisConfig
	cache    *dataprocessing.Cache
	hub      WebSocketHub
	metrics  *infrastructure.PipelineMetrics
	tracer   trace.Tracer
	logger   *slog.Logger

	mu      sync.RWMutex
	lastErr error
}

// NewDashboardService wires the service. hub and metrics may be nil.
func NewDashboardService(cfg *config.Config, cache *dataprocessing.Cache, hub WebSocketHub, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *DashboardService {
	if cache == nil {
		cache = dataprocessing.NewCache(nil)
	}
	logger = infrastructure.WithComponent(logger, "dashboard_service")

	logger.Info("DashboardService initialized",
		slog.String("dataset", cfg.Dataset.Path),
		slog.Float64("alpha", cfg.Analysis.Alpha))

	return &DashboardService{
		path:     cfg.Dataset.Path,
		analysis: cfg.Analysis,
		cache:    cache,
		hub:      hub,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
		logger:   logger,
	}
}

// Path returns the dataset file served.
func (s *DashboardService) Path() string {
	return s.path
}

// Snapshot returns the cleaned dataset, loading it when the file changed.
func (s *DashboardService) Snapshot(ctx context.Context) (*dataprocessing.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.snapshot", trace.WithAttributes(attribute.String("dataset.path", s.path)))
	defer span.End()

	start := time.Now()
	snapshot, hit, err := s.cache.GetOrLoad(ctx, s.path)
	s.metrics.RecordCacheLookup(ctx, hit)
	if !hit {
		rows := 0
		if snapshot != nil {
			rows = snapshot.Clean.Len()
		}
		s.metrics.RecordDatasetLoad(ctx, time.Since(start), rows, err)
	}

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}

	if !hit {
		s.logger.InfoContext(ctx, "Dataset loaded",
			slog.String("path", snapshot.Path),
			slog.Int("raw_rows", snapshot.Raw.Len()),
			slog.Int("clean_rows", snapshot.Clean.Len()),
			slog.Int("imputed_cells", snapshot.Diagnostics.Imputation.Filled()),
			slog.Duration("duration", time.Since(start)))
	}
	span.SetAttributes(attribute.Bool("cache.hit", hit), attribute.Int("dataset.rows", snapshot.Clean.Len()))
	return snapshot, nil
}

// Status reports the state of the served dataset without loading it.
func (s *DashboardService) Status() DatasetStatus {
	st := DatasetStatus{Path: s.path}
	if snapshot, ok := s.cache.Peek(s.path); ok {
		st.Loaded = true
		st.Rows = snapshot.Clean.Len()
		st.LoadedAt = snapshot.LoadedAt
	}
	s.mu.RLock()
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.RUnlock()
	return st
}

// Summary returns the cleaning diagnostics of the served dataset.
func (s *DashboardService) Summary(ctx context.Context) (*DatasetSummary, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(snapshot, s.cache.Stats()), nil
}

func summarize(snapshot *dataprocessing.Snapshot, stats dataprocessing.CacheStats) *DatasetSummary {
	return &DatasetSummary{
		Path:        snapshot.Path,
		ModTime:     snapshot.ModTime,
		LoadedAt:    snapshot.LoadedAt,
		Rows:        snapshot.Clean.Len(),
		Complete:    snapshot.Diagnostics.Complete(),
		Diagnostics: snapshot.Diagnostics,
		Cache:       stats,
	}
}

// Classification returns the measurement class of every column.
func (s *DashboardService) Classification() []dataprocessing.Classification {
	return dataprocessing.Classify()
}

// Options returns the date bounds and the sorted category values of the
// dataset.
func (s *DashboardService) Options(ctx context.Context) (*FilterOptions, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := analysis.DefaultPredicate(snapshot.Clean)
	sort.Strings(p.Vehicles)
	sort.Strings(p.Statuses)
	opts := &FilterOptions{
		Vehicles: p.Vehicles,
		Statuses: p.Statuses,
		Rows:     snapshot.Clean.Len(),
	}
	if p.HasDateRange() {
		opts.From = p.From.Format(dataprocessing.DateLayout)
		opts.To = p.To.Format(dataprocessing.DateLayout)
	}
	return opts, nil
}

// Reload drops the cache and loads the file again. Connected dashboards are
// told about the outcome either way.
func (s *DashboardService) Reload(ctx context.Context, trigger string) (*DatasetSummary, error) {
	s.logger.InfoContext(ctx, "Reloading dataset",
		slog.String("path", s.path),
		slog.String("trigger", trigger))

	wasLoaded := s.Status().Loaded
	s.cache.Invalidate()

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		s.broadcast(ctx, events.MessageTypeDatasetError, events.DatasetError{
			Path:      s.path,
			Error:     err.Error(),
			Code:      ErrorCode(err),
			WasLoaded: wasLoaded,
		})
		return nil, err
	}

	summary := summarize(snapshot, s.cache.Stats())
	s.broadcast(ctx, events.MessageTypeDatasetReloaded, events.DatasetReloaded{
		Path:      summary.Path,
		Rows:      summary.Rows,
		ModTime:   summary.ModTime,
		LoadedAt:  summary.LoadedAt,
		Complete:  summary.Complete,
		Extra:     snapshot.Diagnostics.Extra,
		Triggered: trigger,
	})
	return summary, nil
}

func (s *DashboardService) broadcast(ctx context.Context, t events.MessageType, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(string(t), data)
	s.logger.DebugContext(ctx, "Broadcast dataset event", slog.String("type", string(t)))
}

// ErrorCode classifies a dataset load failure for clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, dataprocessing.ErrFileNotFound):
		return "FILE_NOT_FOUND"
	case errors.Is(err, dataprocessing.ErrSchema):
		return "SCHEMA_MISMATCH"
	case errors.Is(err, dataprocessing.ErrColumnAllMissing):
		return "COLUMN_ALL_MISSING"
	case errors.Is(err, dataprocessing.ErrParse):
		return "PARSE_ERROR"
	default:
		return "DATASET_UNAVAILABLE"
	}
}

// Filtered applies sel to the served dataset.
func (s *DashboardService) Filtered(ctx context.Context, sel Selection) (*dataprocessing.Table, analysis.Predicate, error) {
	if err := sel.Validate(); err != nil {
		return nil, analysis.Predicate{}, err
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, analysis.Predicate{}, err
	}

	_, span := s.tracer.Start(ctx, "analysis.filter")
	defer span.End()

	p := sel.Predicate(snapshot.Clean)
	filtered := analysis.Apply(snapshot.Clean, p)
	s.metrics.RecordFilter(ctx, filtered.Len())
	span.SetAttributes(attribute.Int("rows.in", snapshot.Clean.Len()), attribute.Int("rows.out", filtered.Len()))
	return filtered, p, nil
}

// KPIs returns the headline numbers of sel.
func (s *DashboardService) KPIs(ctx context.Context, sel Selection) (analysis.KPIs, error) {
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return analysis.KPIs{}, err
	}
	return analysis.ComputeKPIs(t), nil
}

// Breakdowns returns the grouped counts of sel.
func (s *DashboardService) Breakdowns(ctx context.Context, sel Selection) (analysis.Section[analysis.Breakdowns], error) {
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return analysis.Section[analysis.Breakdowns]{}, err
	}
	return recordSection(ctx, s.metrics, "breakdowns", analysis.Compute(func() (analysis.Breakdowns, error) {
		return analysis.ComputeBreakdowns(t, s.analysis.TopN)
	})), nil
}

// Distributions returns the histograms of sel.
func (s *DashboardService) Distributions(ctx context.Context, sel Selection) (analysis.Section[analysis.Distributions], error) {
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return analysis.Section[analysis.Distributions]{}, err
	}
	return recordSection(ctx, s.metrics, "distributions", analysis.Compute(func() (analysis.Distributions, error) {
		return analysis.ComputeDistributions(t, s.analysis.HistogramBins)
	})), nil
}

// Dispersion returns spread, correlation and box statistics of sel.
func (s *DashboardService) Dispersion(ctx context.Context, sel Selection) (analysis.Section[analysis.Dispersion], error) {
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return analysis.Section[analysis.Dispersion]{}, err
	}
	return recordSection(ctx, s.metrics, "dispersion", analysis.Compute(func() (analysis.Dispersion, error) {
		return analysis.ComputeDispersion(t)
	})), nil
}

// Hypothesis runs the completed versus cancelled distance test on sel.
func (s *DashboardService) Hypothesis(ctx context.Context, sel Selection) (analysis.Section[analysis.TestResult], error) {
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return analysis.Section[analysis.TestResult]{}, err
	}

	_, span := s.tracer.Start(ctx, "analysis.welch_test")
	defer span.End()

	sec := recordSection(ctx, s.metrics, "hypothesis", analysis.Compute(func() (analysis.TestResult, error) {
		return analysis.WelchTest(t, analysis.DefaultHypothesisConfig(s.analysis.Alpha))
	}))
	if sec.Available {
		s.metrics.RecordHypothesisTest(ctx, string(sec.Data.Outcome))
		span.SetAttributes(attribute.String("outcome", string(sec.Data.Outcome)))
	}
	return sec, nil
}

// Rows returns up to limit leading rows of sel. A zero limit means the
// configured sample size.
func (s *DashboardService) Rows(ctx context.Context, sel Selection, limit int) (analysis.Sample, error) {
	switch {
	case limit == 0:
		limit = s.analysis.SampleRows
	case limit < 0 || limit > config.MaxSampleRows:
		return analysis.Sample{}, fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidLimit, limit, config.MaxSampleRows)
	}
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return analysis.Sample{}, err
	}
	return analysis.TakeSample(t, limit), nil
}

// Report builds every analysis of sel. A failing section is reported in
// place and does not fail the call.
func (s *DashboardService) Report(ctx context.Context, sel Selection) (*analysis.Report, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, snapshot, sel), nil
}

func (s *DashboardService) report(ctx context.Context, snapshot *dataprocessing.Snapshot, sel Selection) *analysis.Report {
	_, span := s.tracer.Start(ctx, "analysis.report")
	defer span.End()

	report := analysis.BuildReport(snapshot.Clean, sel.Predicate(snapshot.Clean), s.reportOptions())
	s.metrics.RecordFilter(ctx, report.FilteredRows)
	if report.Hypothesis.Available {
		s.metrics.RecordHypothesisTest(ctx, string(report.Hypothesis.Data.Outcome))
	}
	for _, name := range report.Unavailable() {
		s.metrics.RecordUnavailableSection(ctx, name)
	}

	s.logger.InfoContext(ctx, "Report built",
		slog.Int("total_rows", report.TotalRows),
		slog.Int("filtered_rows", report.FilteredRows),
		slog.Any("unavailable", report.Unavailable()))
	return report
}

// ChartInput returns the report and filtered rows the charts of sel are
// drawn from.
func (s *DashboardService) ChartInput(ctx context.Context, sel Selection) (charts.Input, error) {
	if err := sel.Validate(); err != nil {
		return charts.Input{}, err
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return charts.Input{}, err
	}
	report := s.report(ctx, snapshot, sel)
	return charts.Input{Report: report, Filtered: analysis.Apply(snapshot.Clean, report.Filter)}, nil
}

// ChartPNG draws the named static chart of sel to w.
func (s *DashboardService) ChartPNG(ctx context.Context, w io.Writer, name string, sel Selection) error {
	if !charts.HasPNG(name) {
		return fmt.Errorf("%w: %q has no static rendering", charts.ErrUnknownChart, name)
	}
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return err
	}
	return charts.RenderPNG(w, name, t, s.analysis.HistogramBins)
}

func (s *DashboardService) reportOptions() analysis.ReportOptions {
	return analysis.ReportOptions{
		Alpha:         s.analysis.Alpha,
		HistogramBins: s.analysis.HistogramBins,
		SampleRows:    s.analysis.SampleRows,
		TopN:          s.analysis.TopN,
	}
}

// ColumnStats returns the mean and sample standard deviation of a numeric
// column named by the client.
func (s *DashboardService) ColumnStats(ctx context.Context, sel Selection, column string) (*ColumnStats, error) {
	field, err := dataprocessing.ParseField(column)
	if err != nil {
		return nil, err
	}
	if !field.Numeric() {
		return nil, fmt.Errorf("%w: %s", analysis.ErrNotNumeric, field)
	}

	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return nil, err
	}
	mean, err := analysis.Mean(t, field)
	if err != nil {
		return nil, err
	}
	std, err := analysis.StdDev(t, field)
	if err != nil {
		return nil, err
	}
	return &ColumnStats{
		Column: field.String(),
		N:      len(t.Numbers(field)),
		Mean:   mean,
		StdDev: std,
	}, nil
}

// Export streams the rows of sel to w in format and returns the number of
// rows written.
func (s *DashboardService) Export(ctx context.Context, w io.Writer, format exporter.Format, sel Selection) (int, error) {
	t, _, err := s.Filtered(ctx, sel)
	if err != nil {
		return 0, err
	}

	_, span := s.tracer.Start(ctx, "export."+string(format))
	defer span.End()

	return exporter.Export(w, format, t, exporter.Options{
		BOMPrefix: true,
		Logger:    s.logger,
	})
}

func recordSection[T any](ctx context.Context, m *infrastructure.PipelineMetrics, name string, sec analysis.Section[T]) analysis.Section[T] {
	if !sec.Available {
		m.RecordUnavailableSection(ctx, name)
	}
	return sec
}
