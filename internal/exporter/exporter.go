package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"ridepulse/internal/dataprocessing"
)

// Options configures an export.
type Options struct {
	// BOMPrefix adds a UTF-8 byte order mark to CSV output so that Excel
	// detects the encoding.
	BOMPrefix bool
	SheetName string
	Logger    *slog.Logger
}

// Export writes t to w in the given format and returns the number of data
// rows written. Nothing is written to disk.
func Export(w io.Writer, format Format, t *dataprocessing.Table, opts Options) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	var (
		rows int
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = WriteCSV(w, t, opts)
	case FormatXLSX:
		rows, err = WriteXLSX(w, t, opts)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		logger.Error("export failed",
			slog.String("format", string(format)),
			slog.Int("rows_written", rows),
			slog.String("error", err.Error()))
		return rows, err
	}

	logger.Info("export complete",
		slog.String("format", string(format)),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
	return rows, nil
}

func exportColumns() []dataprocessing.Column {
	return dataprocessing.Columns()
}

func columnNames(cols []dataprocessing.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
