package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDataset creates an empty dataset file so ResolvePath keeps it.
func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rides.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date\n"), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dataset := writeDataset(t)

	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with dataset override",
			env:  map[string]string{"RIDE_DATASET_FILE": dataset},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, dataset, cfg.Dataset.Path)
				assert.Equal(t, DefaultWatchInterval, cfg.Dataset.WatchInterval)
				assert.InDelta(t, 0.10, cfg.Analysis.Alpha, 1e-12)
				assert.Equal(t, 30, cfg.Analysis.HistogramBins)
				assert.Equal(t, 100, cfg.Analysis.SampleRows)
				assert.Equal(t, 10, cfg.Analysis.TopN)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"RIDE_DATASET_FILE":               dataset,
				"RIDE_SERVER_PORT":                "9090",
				"RIDE_SECURITY_ALLOWED_ORIGINS":   "http://a.example,http://b.example",
				"RIDE_LOGGING_FORMAT":             "text",
				"RIDE_ANALYSIS_HISTOGRAM_BINS":    "12",
				"RIDE_DATASET_WATCH_INTERVAL":     "0s",
				"RIDE_WEBSOCKET_READ_BUFFER_SIZE": "2048",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "json", cfg.Logging.Format, "validate forces json")
				assert.Equal(t, 12, cfg.Analysis.HistogramBins)
				assert.Equal(t, time.Duration(0), cfg.Dataset.WatchInterval)
				assert.Equal(t, 2048, cfg.WebSocket.ReadBufferSize)
			},
		},
		{
			name: "yaml file below environment",
			env: map[string]string{
				"RIDE_DATASET_FILE": dataset,
				"RIDE_SERVER_PORT":  "7070",
			},
			file: "server:\n  port: 6060\n  read_timeout: 5s\nanalysis:\n  top_n: 3\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 3, cfg.Analysis.TopN)
				assert.Equal(t, 30, cfg.Analysis.HistogramBins)
			},
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"RIDE_DATASET_FILE": dataset, "RIDE_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "alpha out of range",
			env:     map[string]string{"RIDE_DATASET_FILE": dataset, "RIDE_ANALYSIS_ALPHA": "1.5"},
			wantErr: true,
		},
		{
			name:    "malformed duration",
			env:     map[string]string{"RIDE_DATASET_FILE": dataset, "RIDE_SERVER_READ_TIMEOUT": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
				t.Setenv("RIDE_CONFIG_FILE", path)
			} else {
				t.Setenv("RIDE_CONFIG_FILE", "")
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultDatasetPath, cfg.Dataset.Path)
	assert.Equal(t, ":8080", cfg.Address())
	assert.NoError(t, cfg.validate())
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"
	cfg.Logging.Format = "text"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestResolvePath(t *testing.T) {
	dataset := writeDataset(t)

	assert.Equal(t, dataset, ResolvePath(dataset), "absolute paths are untouched")
	assert.Equal(t, "", ResolvePath(""))

	resolved := ResolvePath("does/not/exist.csv")
	assert.True(t, filepath.IsAbs(resolved))
	assert.False(t, FileExists(resolved))
}
