package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/shared/testutil"
)

func TestLoad(t *testing.T) {
	path := testutil.WriteRideCSV(t, testutil.SampleRides()...)

	raw, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, testutil.RideHeader, raw.Header)
	assert.Equal(t, len(testutil.SampleRides()), raw.Len())

	cell, ok := raw.Cell(0, "Booking ID")
	require.True(t, ok)
	assert.Equal(t, "CNR0001", cell)

	_, ok = raw.Cell(0, "Surge")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(context.Background(), filepath.Join(dir, "absent.csv"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	for _, kind := range []string{"empty", "ragged", "bad_quote"} {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(dir, kind+".csv")
			require.NoError(t, testutil.CreateCorruptedRideFile(path, kind))

			_, err := Load(context.Background(), path)
			assert.ErrorIs(t, err, ErrParse)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoad_Cancelled(t *testing.T) {
	path := testutil.WriteRideCSV(t, testutil.SampleRides()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_StripsBOMAndTrimsHeader(t *testing.T) {
	csv := "\ufeff Date ,Time\n2024-03-01,08:15:00\n"
	raw, err := Read(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Time"}, raw.Header)

	idx, ok := raw.ColumnIndex("Date")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestRawTable_RowIsCopy(t *testing.T) {
	raw := NewRawTable([]string{"A"}, [][]string{{"x"}})
	row := raw.Row(0)
	row[0] = "changed"
	assert.Equal(t, "x", raw.Rows[0][0])
}

func TestRawTable_LiteralTypes(t *testing.T) {
	raw := NewRawTable(
		[]string{"ints", "gappy", "floats", "mixed", "empty"},
		[][]string{
			{"1", "1", "1.5", "3", ""},
			{"2", "", "2", "abc", "NA"},
		},
	)
	got := raw.LiteralTypes()
	assert.Equal(t, LiteralInteger, got["ints"])
	assert.Equal(t, LiteralFloat, got["gappy"])
	assert.Equal(t, LiteralFloat, got["floats"])
	assert.Equal(t, LiteralText, got["mixed"])
	assert.Equal(t, LiteralFloat, got["empty"])

	missing := raw.MissingCounts()
	assert.Equal(t, 0, missing["ints"])
	assert.Equal(t, 1, missing["gappy"])
	assert.Equal(t, 2, missing["empty"])
}

func TestLoad_Unreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	path := testutil.WriteRideCSV(t, testutil.SampleRides()...)
	require.NoError(t, os.Chmod(path, 0))

	_, err := Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrParse)
}
