package dataprocessing

import (
	"database/sql"
	"strconv"
	"time"
)

// DateLayout is the canonical calendar date format used for output.
const DateLayout = "2006-01-02"

// Record is one typed ride booking. Every field is nullable until the
// imputer has run.
type Record struct {
	Date                 sql.NullTime
	Time                 sql.NullString
	Hour                 sql.NullInt32
	BookingID            sql.NullString
	BookingStatus        sql.NullString
	CustomerID           sql.NullString
	VehicleType          sql.NullString
	PickupLocation       sql.NullString
	DropLocation         sql.NullString
	AvgVTAT              sql.NullFloat64
	AvgCTAT              sql.NullFloat64
	CancelledByCustomer  sql.NullFloat64
	CustomerCancelReason sql.NullString
	CancelledByDriver    sql.NullFloat64
	DriverCancelReason   sql.NullString
	IncompleteRides      sql.NullFloat64
	IncompleteReason     sql.NullString
	BookingValue         sql.NullFloat64
	RideDistance         sql.NullFloat64
	DriverRating         sql.NullFloat64
	CustomerRating       sql.NullFloat64
	PaymentMethod        sql.NullString
}

// floatField returns the float slot backing f, or nil.
func (r *Record) floatField(f Field) *sql.NullFloat64 {
	switch f {
	case FieldAvgVTAT:
		return &r.AvgVTAT
	case FieldAvgCTAT:
		return &r.AvgCTAT
	case FieldCancelledByCustomer:
		return &r.CancelledByCustomer
	case FieldCancelledByDriver:
		return &r.CancelledByDriver
	case FieldIncompleteRides:
		return &r.IncompleteRides
	case FieldBookingValue:
		return &r.BookingValue
	case FieldRideDistance:
		return &r.RideDistance
	case FieldDriverRating:
		return &r.DriverRating
	case FieldCustomerRating:
		return &r.CustomerRating
	}
	return nil
}

// stringField returns the string slot backing f, or nil.
func (r *Record) stringField(f Field) *sql.NullString {
	switch f {
	case FieldTime:
		return &r.Time
	case FieldBookingID:
		return &r.BookingID
	case FieldBookingStatus:
		return &r.BookingStatus
	case FieldCustomerID:
		return &r.CustomerID
	case FieldVehicleType:
		return &r.VehicleType
	case FieldPickupLocation:
		return &r.PickupLocation
	case FieldDropLocation:
		return &r.DropLocation
	case FieldCustomerCancelReason:
		return &r.CustomerCancelReason
	case FieldDriverCancelReason:
		return &r.DriverCancelReason
	case FieldIncompleteReason:
		return &r.IncompleteReason
	case FieldPaymentMethod:
		return &r.PaymentMethod
	}
	return nil
}

// Number returns the numeric value of f. ok is false when the value is
// missing or f is not numeric.
func (r *Record) Number(f Field) (v float64, ok bool) {
	if f == FieldHour {
		return float64(r.Hour.Int32), r.Hour.Valid
	}
	if p := r.floatField(f); p != nil {
		return p.Float64, p.Valid
	}
	return 0, false
}

// Text returns the string value of f. ok is false when the value is missing
// or f does not hold text.
func (r *Record) Text(f Field) (v string, ok bool) {
	if p := r.stringField(f); p != nil {
		return p.String, p.Valid
	}
	return "", false
}

// Missing reports whether f has no value.
func (r *Record) Missing(f Field) bool {
	switch {
	case f == FieldDate:
		return !r.Date.Valid
	case f == FieldHour:
		return !r.Hour.Valid
	case r.floatField(f) != nil:
		return !r.floatField(f).Valid
	case r.stringField(f) != nil:
		return !r.stringField(f).Valid
	}
	return true
}

// Day returns the calendar date with the time of day stripped.
func (r *Record) Day() (time.Time, bool) {
	if !r.Date.Valid {
		return time.Time{}, false
	}
	y, m, d := r.Date.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// Format renders f for display and export. Missing values render as "".
func (r *Record) Format(f Field) string {
	switch {
	case f == FieldDate:
		if day, ok := r.Day(); ok {
			return day.Format(DateLayout)
		}
	case f.Numeric():
		if v, ok := r.Number(f); ok {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	default:
		if v, ok := r.Text(f); ok {
			return v
		}
	}
	return ""
}

// Status returns the booking status or "" when missing.
func (r *Record) Status() string { return r.BookingStatus.String }

// Table is an ordered sequence of records sharing the ride bookings schema.
// Tables are treated as immutable once built: stages produce new tables.
type Table struct {
	records []Record
}

// NewTable copies records into a new table.
func NewTable(records []Record) *Table {
	out := make([]Record, len(records))
	copy(out, records)
	return &Table{records: out}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns a copy of row i.
func (t *Table) At(i int) Record { return t.records[i] }

// Records returns a copy of every row.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every row in order with a pointer into the table. fn
// must not modify the record.
func (t *Table) Each(fn func(i int, r *Record)) {
	if t == nil {
		return
	}
	for i := range t.records {
		fn(i, &t.records[i])
	}
}

// Select returns a new table holding the rows for which keep returns true,
// preserving order.
func (t *Table) Select(keep func(r *Record) bool) *Table {
	out := &Table{records: make([]Record, 0, t.Len())}
	t.Each(func(_ int, r *Record) {
		if keep(r) {
			out.records = append(out.records, *r)
		}
	})
	return out
}

// Head returns a new table with at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n > t.Len() {
		n = t.Len()
	}
	if n < 0 {
		n = 0
	}
	if t == nil {
		return &Table{}
	}
	return NewTable(t.records[:n])
}

// Numbers returns the non-missing values of f in row order.
func (t *Table) Numbers(f Field) []float64 {
	out := make([]float64, 0, t.Len())
	t.Each(func(_ int, r *Record) {
		if v, ok := r.Number(f); ok {
			out = append(out, v)
		}
	})
	return out
}

// MissingCount returns the number of rows where f is missing.
func (t *Table) MissingCount(f Field) int {
	n := 0
	t.Each(func(_ int, r *Record) {
		if r.Missing(f) {
			n++
		}
	})
	return n
}

// Distinct returns the distinct non-missing values of a text field in order
// of first appearance.
func (t *Table) Distinct(f Field) []string {
	seen := make(map[string]struct{})
	var out []string
	t.Each(func(_ int, r *Record) {
		v, ok := r.Text(f)
		if !ok {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	})
	return out
}

// DateRange returns the earliest and latest calendar dates in the table.
func (t *Table) DateRange() (first, last time.Time, ok bool) {
	t.Each(func(_ int, r *Record) {
		day, valid := r.Day()
		if !valid {
			return
		}
		if !ok || day.Before(first) {
			first = day
		}
		if !ok || day.After(last) {
			last = day
		}
		ok = true
	})
	return first, last, ok
}
