package exporter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for an export format other than csv or
// xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is a download file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type served with the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds a dated download name such as rides_20240301.csv.
func (f Format) FileName(base string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, at.Format("20060102"), f)
}
