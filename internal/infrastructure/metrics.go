package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the application instruments. All Record methods are
// safe on a nil receiver so callers never need to check for disabled metrics.
type PipelineMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	DatasetLoadsTotal   metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	DatasetCacheLookups metric.Int64Counter
	DatasetRows         metric.Int64Gauge

	// Analysis metrics
	FilteredRows         metric.Int64Histogram
	HypothesisTestsTotal metric.Int64Counter
	ReportSectionErrors  metric.Int64Counter
}

// CreatePipelineMetrics registers every instrument on meter.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoadsTotal, err = meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Dataset load attempts by outcome"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoadDuration, err = meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Time spent loading, normalizing and imputing the dataset"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.DatasetCacheLookups, err = meter.Int64Counter(
		"dataset_cache_lookups_total",
		metric.WithDescription("Dataset cache lookups by result"),
	); err != nil {
		return nil, err
	}

	if m.DatasetRows, err = meter.Int64Gauge(
		"dataset_rows",
		metric.WithDescription("Rows in the current clean table"),
	); err != nil {
		return nil, err
	}

	if m.FilteredRows, err = meter.Int64Histogram(
		"analysis_filtered_rows",
		metric.WithDescription("Rows left after applying the filter predicate"),
	); err != nil {
		return nil, err
	}

	if m.HypothesisTestsTotal, err = meter.Int64Counter(
		"analysis_hypothesis_tests_total",
		metric.WithDescription("Hypothesis test runs by outcome"),
	); err != nil {
		return nil, err
	}

	if m.ReportSectionErrors, err = meter.Int64Counter(
		"analysis_report_section_unavailable_total",
		metric.WithDescription("Report sections rendered as placeholders"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDatasetLoad records one load attempt.
func (m *PipelineMetrics) RecordDatasetLoad(ctx context.Context, d time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.DatasetLoadsTotal.Add(ctx, 1, attrs)
	m.DatasetLoadDuration.Record(ctx, d.Seconds(), attrs)
	if err == nil {
		m.DatasetRows.Record(ctx, int64(rows))
	}
}

// RecordCacheLookup records a cache hit or miss.
func (m *PipelineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.DatasetCacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordFilter records the size of a filtered table.
func (m *PipelineMetrics) RecordFilter(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.FilteredRows.Record(ctx, int64(rows))
}

// RecordHypothesisTest records a hypothesis test outcome.
func (m *PipelineMetrics) RecordHypothesisTest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.HypothesisTestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordUnavailableSection records a report section that fell back to a placeholder.
func (m *PipelineMetrics) RecordUnavailableSection(ctx context.Context, section string) {
	if m == nil {
		return
	}
	m.ReportSectionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("section", section)))
}
