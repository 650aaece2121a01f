package dataprocessing

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Strategy names the statistic used to fill a column.
type Strategy string

const (
	StrategyMedian Strategy = "median"
	StrategyMode   Strategy = "mode"
)

// Imputation describes how one column was filled.
type Imputation struct {
	Column   string   `json:"column"`
	Strategy Strategy `json:"strategy"`
	Value    string   `json:"value"`
	Filled   int      `json:"filled"`
}

// ImputationReport lists the columns that had missing cells, in schema order.
type ImputationReport struct {
	Columns []Imputation `json:"columns"`
}

// Filled returns the total number of cells filled.
func (r *ImputationReport) Filled() int {
	n := 0
	for _, c := range r.Columns {
		n += c.Filled
	}
	return n
}

// Impute returns a new table with every missing cell filled: numeric columns
// take the median of their present values and all other columns take the
// most frequent value. Mode ties go to the value seen first in table order.
// A column whose cells are all missing fails with ErrColumnAllMissing. The
// input table is not modified.
func Impute(t *Table) (*Table, *ImputationReport, error) {
	out := NewTable(t.records)
	report := &ImputationReport{}

	for f := Field(0); f < fieldCount; f++ {
		missing := out.MissingCount(f)
		if missing == 0 {
			continue
		}
		if missing == out.Len() {
			return nil, nil, fmt.Errorf("%w: %s", ErrColumnAllMissing, f)
		}

		entry := Imputation{Column: f.String(), Filled: missing}
		switch {
		case f == FieldHour:
			hour := int32(math.Round(Median(out.Numbers(f))))
			entry.Strategy, entry.Value = StrategyMedian, strconv.Itoa(int(hour))
			fill(out, f, func(r *Record) { r.Hour = sql.NullInt32{Int32: hour, Valid: true} })

		case f.Numeric():
			median := Median(out.Numbers(f))
			entry.Strategy, entry.Value = StrategyMedian, strconv.FormatFloat(median, 'f', -1, 64)
			fill(out, f, func(r *Record) { *r.floatField(f) = sql.NullFloat64{Float64: median, Valid: true} })

		case f == FieldDate:
			day := modeDate(out)
			entry.Strategy, entry.Value = StrategyMode, day.Format(DateLayout)
			fill(out, f, func(r *Record) { r.Date = sql.NullTime{Time: day, Valid: true} })

		default:
			mode := Mode(textValues(out, f))
			entry.Strategy, entry.Value = StrategyMode, mode
			fill(out, f, func(r *Record) { *r.stringField(f) = sql.NullString{String: mode, Valid: true} })
		}
		report.Columns = append(report.Columns, entry)
	}

	return out, report, nil
}

func fill(t *Table, f Field, set func(r *Record)) {
	for i := range t.records {
		if t.records[i].Missing(f) {
			set(&t.records[i])
		}
	}
}

func textValues(t *Table, f Field) []string {
	out := make([]string, 0, t.Len())
	t.Each(func(_ int, r *Record) {
		if v, ok := r.Text(f); ok {
			out = append(out, v)
		}
	})
	return out
}

func modeDate(t *Table) time.Time {
	values := make([]string, 0, t.Len())
	t.Each(func(_ int, r *Record) {
		if day, ok := r.Day(); ok {
			values = append(values, day.Format(DateLayout))
		}
	})
	day, _ := time.Parse(DateLayout, Mode(values))
	return day
}

// Median returns the middle value of values, averaging the two middle values
// for an even count. It returns NaN for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mode returns the most frequent value. Ties go to the value that appears
// first. It returns "" for an empty slice.
func Mode(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}
