package services

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/analysis"
	"ridepulse/internal/charts"
	"ridepulse/internal/config"
	"ridepulse/internal/dataprocessing"
	"ridepulse/internal/exporter"
	"ridepulse/internal/shared/testutil"
	"ridepulse/pkg/contracts/events"
)

func newTestService(t *testing.T) (*DashboardService, *MockWebSocketHub, string) {
	t.Helper()
	path := testutil.WriteRideCSV(t, testutil.SampleRides()...)
	cfg := config.Default()
	cfg.Dataset.Path = path
	logger, _ := testutil.NewTestLogger(t)
	hub := &MockWebSocketHub{}
	return NewDashboardService(cfg, nil, hub, nil, logger), hub, path
}

func day(s string) time.Time {
	d, err := time.Parse(dataprocessing.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDashboardService_Summary(t *testing.T) {
	svc, _, path := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, path, summary.Path)
	assert.Equal(t, 8, summary.Rows)
	assert.True(t, summary.Complete)
	assert.Equal(t, int64(1), summary.Cache.Loads)

	summary, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Cache.Hits)
	assert.Equal(t, int64(1), summary.Cache.Loads, "unchanged file is served from cache")

	st := svc.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, 8, st.Rows)
	assert.Empty(t, st.LastError)
}

func TestDashboardService_MissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Path = t.TempDir() + "/absent.csv"
	logger, handler := testutil.NewTestLogger(t)
	svc := NewDashboardService(cfg, nil, nil, nil, logger)

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
	assert.ErrorIs(t, err, dataprocessing.ErrFileNotFound)

	st := svc.Status()
	assert.False(t, st.Loaded)
	assert.Contains(t, st.LastError, "not found")
	assert.True(t, handler.ContainsMessage("Dataset load failed"))
}

func TestDashboardService_Options(t *testing.T) {
	svc, _, _ := newTestService(t)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", opts.From)
	assert.Equal(t, "2024-03-05", opts.To)
	assert.Equal(t, []string{"Auto", "Bike", "Go Mini", "Go Sedan", "Premier Sedan", "eBike"}, opts.Vehicles)
	assert.Len(t, opts.Statuses, 5)
	assert.Equal(t, 8, opts.Rows)
}

func TestDashboardService_Filtered(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sel  Selection
		want int
	}{
		{"no selection", Selection{}, 8},
		{"vehicle", Selection{Vehicles: []string{"Auto"}}, 3},
		{"empty vehicle set", Selection{Vehicles: []string{}}, 0},
		{"date range", Selection{From: day("2024-03-02"), To: day("2024-03-03")}, 4},
		{"single bound ignored", Selection{From: day("2024-03-04")}, 8},
		{"status", Selection{Statuses: []string{dataprocessing.StatusCompleted}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, _, err := svc.Filtered(ctx, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filtered.Len())
		})
	}

	_, _, err := svc.Filtered(ctx, Selection{From: day("2024-03-05"), To: day("2024-03-01")})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestDashboardService_KPIs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	kpis, err := svc.KPIs(ctx, Selection{Vehicles: []string{"Auto"}})
	require.NoError(t, err)
	assert.Equal(t, 3, kpis.TotalBookings)
	assert.Equal(t, 2, kpis.Completed)

	kpis, err = svc.KPIs(ctx, Selection{Vehicles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 0, kpis.TotalBookings)
	assert.Equal(t, "N/A", kpis.CompletionRate.String())
}

func TestDashboardService_SectionsOnEmptySelection(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	empty := Selection{Statuses: []string{}}

	breakdowns, err := svc.Breakdowns(ctx, empty)
	require.NoError(t, err)
	assert.False(t, breakdowns.Available)
	assert.Equal(t, analysis.ErrEmptySelection.Error(), breakdowns.Message)

	dispersion, err := svc.Dispersion(ctx, empty)
	require.NoError(t, err)
	assert.False(t, dispersion.Available)

	hypothesis, err := svc.Hypothesis(ctx, empty)
	require.NoError(t, err)
	require.True(t, hypothesis.Available)
	assert.Equal(t, analysis.OutcomeInsufficientData, hypothesis.Data.Outcome)
}

func TestDashboardService_Hypothesis(t *testing.T) {
	svc, _, _ := newTestService(t)

	sec, err := svc.Hypothesis(context.Background(), Selection{})
	require.NoError(t, err)
	require.True(t, sec.Available)
	assert.True(t, sec.Data.Outcome.Tested())
	assert.Equal(t, 4, sec.Data.GroupA.N)
	assert.Equal(t, 3, sec.Data.GroupB.N)
	assert.InDelta(t, 0.10, sec.Data.Alpha, 1e-12)
}

func TestDashboardService_Rows(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sample, err := svc.Rows(ctx, Selection{}, 0)
	require.NoError(t, err)
	assert.Len(t, sample.Rows, 8)

	sample, err = svc.Rows(ctx, Selection{}, 2)
	require.NoError(t, err)
	assert.Len(t, sample.Rows, 2)
	assert.Equal(t, 8, sample.Total)

	_, err = svc.Rows(ctx, Selection{}, -1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	_, err = svc.Rows(ctx, Selection{}, config.MaxSampleRows+1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestDashboardService_ColumnStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	stats, err := svc.ColumnStats(ctx, Selection{}, "booking value")
	require.NoError(t, err)
	assert.Equal(t, "Booking Value", stats.Column)
	assert.Equal(t, 8, stats.N)
	assert.InDelta(t, 280.0, stats.Mean.Value, 1e-9)
	assert.True(t, stats.StdDev.Valid)

	_, err = svc.ColumnStats(ctx, Selection{}, "Surge")
	assert.ErrorIs(t, err, dataprocessing.ErrUnknownColumn)

	_, err = svc.ColumnStats(ctx, Selection{}, "Vehicle Type")
	assert.ErrorIs(t, err, analysis.ErrNotNumeric)
}

func TestDashboardService_Report(t *testing.T) {
	svc, _, _ := newTestService(t)

	report, err := svc.Report(context.Background(), Selection{Vehicles: []string{"Auto", "Go Sedan"}})
	require.NoError(t, err)
	assert.Equal(t, 8, report.TotalRows)
	assert.Equal(t, 4, report.FilteredRows)
	assert.True(t, report.KPIs.Available)
	assert.True(t, report.Sample.Available)
	assert.Len(t, report.Sample.Data.Rows, 4)
}

func TestDashboardService_ChartInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in, err := svc.ChartInput(ctx, Selection{Vehicles: []string{"Auto", "Go Sedan"}})
	require.NoError(t, err)
	assert.Equal(t, 4, in.Report.FilteredRows)
	assert.Equal(t, 4, in.Filtered.Len())

	_, err = svc.ChartInput(ctx, Selection{From: day("2024-03-05"), To: day("2024-03-01")})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestDashboardService_ChartPNG(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.ChartPNG(ctx, &buf, charts.BookingValueHist, Selection{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	buf.Reset()
	assert.ErrorIs(t, svc.ChartPNG(ctx, &buf, charts.StatusPie, Selection{}), charts.ErrUnknownChart)
	assert.ErrorIs(t, svc.ChartPNG(ctx, &buf, charts.BookingValueBox, Selection{Vehicles: []string{}}), charts.ErrNoData)
}

func TestDashboardService_Export(t *testing.T) {
	svc, _, _ := newTestService(t)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), &buf, exporter.FormatCSV, Selection{Statuses: []string{dataprocessing.StatusCompleted}})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Booking ID")
}

func TestDashboardService_Reload(t *testing.T) {
	svc, hub, path := newTestService(t)
	ctx := context.Background()

	hub.On("Broadcast", string(events.MessageTypeDatasetReloaded), mock.MatchedBy(func(e events.DatasetReloaded) bool {
		return e.Rows == 8 && e.Triggered == "api" && e.Complete
	})).Once()

	summary, err := svc.Reload(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, 8, summary.Rows)

	require.NoError(t, os.Remove(path))
	hub.On("Broadcast", string(events.MessageTypeDatasetError), mock.MatchedBy(func(e events.DatasetError) bool {
		return e.Code == "FILE_NOT_FOUND" && e.WasLoaded
	})).Once()

	_, err = svc.Reload(ctx, "api")
	assert.ErrorIs(t, err, dataprocessing.ErrFileNotFound)
	assert.False(t, svc.Status().Loaded)
	hub.AssertExpectations(t)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{dataprocessing.ErrFileNotFound, "FILE_NOT_FOUND"},
		{dataprocessing.ErrSchema, "SCHEMA_MISMATCH"},
		{dataprocessing.ErrColumnAllMissing, "COLUMN_ALL_MISSING"},
		{dataprocessing.ErrParse, "PARSE_ERROR"},
		{context.Canceled, "DATASET_UNAVAILABLE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err))
	}
}
