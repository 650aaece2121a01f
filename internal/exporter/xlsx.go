package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ridepulse/internal/dataprocessing"
)

// DefaultSheetName is the worksheet holding exported rides.
const DefaultSheetName = "Rides"

// WriteXLSX streams t into a single-sheet workbook written to w. Numeric
// columns are stored as numbers and the header row is frozen.
func WriteXLSX(w io.Writer, t *dataprocessing.Table, opts Options) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"264653"}},
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}

	cols := exportColumns()
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}
	if err := sw.SetColWidth(1, len(cols), 18); err != nil {
		return 0, fmt.Errorf("set column width: %w", err)
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	var writeErr error
	t.Each(func(i int, r *dataprocessing.Record) {
		if writeErr != nil {
			return
		}
		values := make([]interface{}, len(cols))
		for j, c := range cols {
			values[j] = cellValue(r, c.Field)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			writeErr = err
			return
		}
		if err := sw.SetRow(cell, values); err != nil {
			writeErr = fmt.Errorf("write row %d: %w", i, err)
			return
		}
		rows++
	})
	if writeErr != nil {
		return rows, writeErr
	}

	if err := sw.Flush(); err != nil {
		return rows, fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return rows, fmt.Errorf("write workbook: %w", err)
	}
	return rows, nil
}

func cellValue(r *dataprocessing.Record, f dataprocessing.Field) interface{} {
	if f.Numeric() {
		if v, ok := r.Number(f); ok {
			return v
		}
		return nil
	}
	return r.Format(f)
}
