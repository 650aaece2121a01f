package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records", func(t *testing.T) {
		logger, h := NewTestLogger(t)
		logger.Info("dataset loaded", slog.Int("rows", 8))
		logger.Error("load failed")

		require.Equal(t, 2, h.Count())
		assert.True(t, h.ContainsMessage("dataset loaded"))
		assert.True(t, h.ContainsAttr("rows", int64(8)))
		assert.Len(t, h.RecordsAt(slog.LevelError), 1)
	})

	t.Run("derived loggers share the buffer", func(t *testing.T) {
		logger, h := NewTestLogger(t)
		logger.With(slog.String("component", "cache")).WithGroup("load").Info("hit", slog.Bool("fresh", true))

		records := h.Records()
		require.Len(t, records, 1)
		assert.Equal(t, "cache", records[0].Attrs["component"])
		assert.Equal(t, true, records[0].Attrs["load.fresh"])
	})

	t.Run("reset", func(t *testing.T) {
		logger, h := NewTestLogger(t)
		logger.Warn("x")
		h.Reset()
		assert.Zero(t, h.Count())
	})
}

func TestRideCSV(t *testing.T) {
	out := RideCSV(SampleRides()...)
	lines := 0
	for _, c := range out {
		if c == '\n' {
			lines++
		}
	}
	assert.Equal(t, len(SampleRides())+1, lines)
	assert.Len(t, SampleRides()[0].Row(), len(RideHeader))
}
