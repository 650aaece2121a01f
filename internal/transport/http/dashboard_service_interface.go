package http

import (
	"context"
	"io"

	"ridepulse/internal/analysis"
	"ridepulse/internal/charts"
	"ridepulse/internal/dataprocessing"
	"ridepulse/internal/exporter"
	"ridepulse/internal/services"
)

// DatasetService is what the dataset handler needs from the service layer
type DatasetService interface {
	Summary(ctx context.Context) (*services.DatasetSummary, error)
	Classification() []dataprocessing.Classification
	Options(ctx context.Context) (*services.FilterOptions, error)
	Reload(ctx context.Context, trigger string) (*services.DatasetSummary, error)
}

// AnalysisService computes the analysis views of a selection
type AnalysisService interface {
	KPIs(ctx context.Context, sel services.Selection) (analysis.KPIs, error)
	Breakdowns(ctx context.Context, sel services.Selection) (analysis.Section[analysis.Breakdowns], error)
	Distributions(ctx context.Context, sel services.Selection) (analysis.Section[analysis.Distributions], error)
	Dispersion(ctx context.Context, sel services.Selection) (analysis.Section[analysis.Dispersion], error)
	Hypothesis(ctx context.Context, sel services.Selection) (analysis.Section[analysis.TestResult], error)
	Rows(ctx context.Context, sel services.Selection, limit int) (analysis.Sample, error)
	Report(ctx context.Context, sel services.Selection) (*analysis.Report, error)
	ColumnStats(ctx context.Context, sel services.Selection, column string) (*services.ColumnStats, error)
}

// ExportService streams a selection as a download
type ExportService interface {
	Export(ctx context.Context, w io.Writer, format exporter.Format, sel services.Selection) (int, error)
}

// ChartService supplies the data charts are drawn from
type ChartService interface {
	ChartInput(ctx context.Context, sel services.Selection) (charts.Input, error)
	ChartPNG(ctx context.Context, w io.Writer, name string, sel services.Selection) error
}
