// Package exporter streams a ride bookings table as a CSV or XLSX download.
//
// Exports are written straight to the caller's io.Writer, usually an HTTP
// response, and never touch the filesystem.
//
//	format, err := exporter.ParseFormat("xlsx")
//	if err != nil {
//	    return err
//	}
//	w.Header().Set("Content-Type", format.ContentType())
//	rows, err := exporter.Export(w, format, filtered, exporter.Options{})
//
// CSV output optionally starts with a UTF-8 BOM for Excel. XLSX output
// keeps numeric columns as numbers and freezes the header row.
package exporter
