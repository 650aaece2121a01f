package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is the file as read: a header and rows of text cells with no
// semantic coercion applied.
type RawTable struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewRawTable builds a raw table, copying header and rows.
func NewRawTable(header []string, rows [][]string) *RawTable {
	t := &RawTable{
		Header: make([]string, len(header)),
		Rows:   make([][]string, len(rows)),
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Header[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	for i, row := range rows {
		t.Rows[i] = append([]string(nil), row...)
	}
	return t
}

// Len returns the number of data rows.
func (t *RawTable) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a header name.
func (t *RawTable) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the cell at row i of the named column.
func (t *RawTable) Cell(i int, name string) (string, bool) {
	col, ok := t.index[name]
	if !ok || col >= len(t.Rows[i]) {
		return "", false
	}
	return t.Rows[i][col], true
}

// Row returns a copy of row i.
func (t *RawTable) Row(i int) []string {
	return append([]string(nil), t.Rows[i]...)
}

// Load reads the delimited file at path into a RawTable. A missing file
// yields ErrFileNotFound and any read or parse failure yields ErrParse.
func Load(ctx context.Context, path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrParse, path, err)
	}
	defer file.Close()

	raw, err := Read(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// Read parses CSV from r. Every row must have as many fields as the header.
func Read(ctx context.Context, r io.Reader) (*RawTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}

	var rows [][]string
	for line := 0; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		rows = append(rows, record)
	}

	return NewRawTable(header, rows), nil
}

// LiteralType is the storage type a raw column would get from its literal
// contents, before any semantic coercion.
type LiteralType string

const (
	LiteralInteger LiteralType = "integer"
	LiteralFloat   LiteralType = "float"
	LiteralText    LiteralType = "text"
)

// LiteralTypes infers the literal type of every raw column. Integer columns
// with missing cells and columns with no values at all report float, since
// the missing marker forces a floating point store.
func (t *RawTable) LiteralTypes() map[string]LiteralType {
	out := make(map[string]LiteralType, len(t.Header))
	for col, name := range t.Header {
		kind := LiteralInteger
		seen, missing := false, false
		for _, row := range t.Rows {
			if col >= len(row) || IsMissing(row[col]) {
				missing = true
				continue
			}
			seen = true
			cell := row[col]
			if _, ok := ParseInt(cell); ok {
				continue
			}
			if _, ok := ParseFloat(cell); ok {
				kind = LiteralFloat
				continue
			}
			kind = LiteralText
			break
		}
		if !seen || (kind == LiteralInteger && missing) {
			kind = LiteralFloat
		}
		out[name] = kind
	}
	return out
}

// MissingCounts returns the number of missing cells per header column.
func (t *RawTable) MissingCounts() map[string]int {
	out := make(map[string]int, len(t.Header))
	for col, name := range t.Header {
		n := 0
		for _, row := range t.Rows {
			if col >= len(row) || IsMissing(row[col]) {
				n++
			}
		}
		out[name] = n
	}
	return out
}
