package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/shared/testutil"
)

func TestListFlag(t *testing.T) {
	var l listFlag
	require.NoError(t, l.Set("Auto"))
	require.NoError(t, l.Set("Bike, Go Sedan,"))

	if diff := cmp.Diff(listFlag{"Auto", "Bike", "Go Sedan"}, l); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Auto,Bike,Go Sedan", l.String())
}

func TestRun_Report(t *testing.T) {
	path := testutil.WriteRideCSV(t, testutil.SampleRides()...)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-file", path, "-vehicle", "Auto", "-pretty"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var report struct {
		TotalRows    int `json:"total_rows"`
		FilteredRows int `json:"filtered_rows"`
		KPIs         struct {
			Available bool `json:"available"`
			Data      struct {
				Completed int `json:"completed"`
			} `json:"data"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, 8, report.TotalRows)
	assert.Equal(t, 3, report.FilteredRows)
	assert.True(t, report.KPIs.Available)
	assert.Equal(t, 2, report.KPIs.Data.Completed)
	assert.Contains(t, stdout.String(), "\n  \"")
}

func TestRun_Errors(t *testing.T) {
	path := testutil.WriteRideCSV(t, testutil.SampleRides()...)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantLog  string
	}{
		{
			name:     "missing file",
			args:     []string{"-file", filepath.Join(t.TempDir(), "none.csv")},
			wantCode: 1,
			wantLog:  "FILE_NOT_FOUND",
		},
		{
			name:     "bad date",
			args:     []string{"-file", path, "-from", "March"},
			wantCode: 2,
			wantLog:  "Invalid filter",
		},
		{
			name:     "reversed range",
			args:     []string{"-file", path, "-from", "2024-03-05", "-to", "2024-03-01"},
			wantCode: 2,
			wantLog:  "after",
		},
		{
			name:     "unknown flag",
			args:     []string{"-format", "xml"},
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout.String())
			if tt.wantLog != "" {
				assert.Contains(t, stderr.String(), tt.wantLog)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "RidePulse")
}
