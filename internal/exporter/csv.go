package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"ridepulse/internal/dataprocessing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter writes CSV rows to an underlying writer as they arrive.
type StreamWriter struct {
	writer *csv.Writer
	rows   int
}

// NewStreamWriter writes the optional BOM and the header, then returns a
// writer for the data rows.
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("write BOM: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return nil, fmt.Errorf("write headers: %w", err)
		}
	}
	return &StreamWriter{writer: cw}, nil
}

// WriteRecord writes a single row.
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("write record %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

// Rows returns the number of data rows written.
func (s *StreamWriter) Rows() int { return s.rows }

// Close flushes buffered rows.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteCSV streams t to w in schema column order. Values are rendered the
// same way as in the dashboard sample table.
func WriteCSV(w io.Writer, t *dataprocessing.Table, opts Options) (int, error) {
	cols := exportColumns()
	stream, err := NewStreamWriter(w, columnNames(cols), opts.BOMPrefix)
	if err != nil {
		return 0, err
	}

	row := make([]string, len(cols))
	var writeErr error
	t.Each(func(_ int, r *dataprocessing.Record) {
		if writeErr != nil {
			return
		}
		for i, c := range cols {
			row[i] = r.Format(c.Field)
		}
		writeErr = stream.WriteRecord(row)
	})
	if writeErr != nil {
		return stream.Rows(), writeErr
	}
	return stream.Rows(), stream.Close()
}
