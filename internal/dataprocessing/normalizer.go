package dataprocessing

import (
	"database/sql"
	"fmt"
	"strings"
)

// ValidateHeader checks that every source column is present.
func ValidateHeader(raw *RawTable) error {
	var missing []string
	for _, c := range SourceColumns() {
		if _, ok := raw.ColumnIndex(c.Name); !ok {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(missing, ", "))
	}
	return nil
}

// Normalize coerces raw text cells into typed records. Malformed dates,
// clock values and numbers become missing values; only a header that does
// not satisfy the schema is an error. The returned table shares no memory
// with raw.
func Normalize(raw *RawTable) (*Table, error) {
	if err := ValidateHeader(raw); err != nil {
		return nil, err
	}

	idx := make([]int, fieldCount)
	for _, c := range SourceColumns() {
		idx[c.Field], _ = raw.ColumnIndex(c.Name)
	}

	records := make([]Record, raw.Len())
	for i, row := range raw.Rows {
		cell := func(f Field) string {
			if col := idx[f]; col < len(row) {
				return row[col]
			}
			return ""
		}

		r := &records[i]
		if d, ok := ParseDate(cell(FieldDate)); ok {
			r.Date = sql.NullTime{Time: d, Valid: true}
		}

		r.Time = textValue(cell(FieldTime))
		if h, ok := ParseHour(cell(FieldTime)); ok {
			r.Hour = sql.NullInt32{Int32: int32(h), Valid: true}
		}

		for _, f := range NumericFields() {
			if f == FieldHour {
				continue
			}
			if v, ok := ParseFloat(cell(f)); ok {
				*r.floatField(f) = sql.NullFloat64{Float64: v, Valid: true}
			}
		}

		for f := Field(0); f < fieldCount; f++ {
			if p := r.stringField(f); p != nil && f != FieldTime {
				*p = textValue(cell(f))
			}
		}
	}

	return &Table{records: records}, nil
}

func textValue(s string) sql.NullString {
	if IsMissing(s) {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(s), Valid: true}
}
