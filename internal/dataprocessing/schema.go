package dataprocessing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the semantic type of a column.
type Kind int

const (
	KindIdentifier Kind = iota
	KindDate
	KindTime
	KindCategorical
	KindContinuous
	KindDiscrete
	KindText
)

var kindNames = map[Kind]string{
	KindIdentifier:  "identifier",
	KindDate:        "date",
	KindTime:        "time",
	KindCategorical: "categorical",
	KindContinuous:  "continuous",
	KindDiscrete:    "discrete",
	KindText:        "text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Numeric reports whether values of this kind are imputed with the median.
func (k Kind) Numeric() bool {
	return k == KindContinuous || k == KindDiscrete
}

// Field identifies one column of the ride bookings schema. Fields are listed
// in source file order with the derived Hour last.
type Field int

const (
	FieldDate Field = iota
	FieldTime
	FieldBookingID
	FieldBookingStatus
	FieldCustomerID
	FieldVehicleType
	FieldPickupLocation
	FieldDropLocation
	FieldAvgVTAT
	FieldAvgCTAT
	FieldCancelledByCustomer
	FieldCustomerCancelReason
	FieldCancelledByDriver
	FieldDriverCancelReason
	FieldIncompleteRides
	FieldIncompleteReason
	FieldBookingValue
	FieldRideDistance
	FieldDriverRating
	FieldCustomerRating
	FieldPaymentMethod
	FieldHour

	fieldCount
)

// Column describes a schema entry.
type Column struct {
	Field   Field  `json:"-"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Derived bool   `json:"derived,omitempty"`
}

var columns = [fieldCount]Column{
	{FieldDate, "Date", KindDate, false},
	{FieldTime, "Time", KindTime, false},
	{FieldBookingID, "Booking ID", KindIdentifier, false},
	{FieldBookingStatus, "Booking Status", KindCategorical, false},
	{FieldCustomerID, "Customer ID", KindIdentifier, false},
	{FieldVehicleType, "Vehicle Type", KindCategorical, false},
	{FieldPickupLocation, "Pickup Location", KindCategorical, false},
	{FieldDropLocation, "Drop Location", KindCategorical, false},
	{FieldAvgVTAT, "Avg VTAT", KindContinuous, false},
	{FieldAvgCTAT, "Avg CTAT", KindContinuous, false},
	{FieldCancelledByCustomer, "Cancelled Rides by Customer", KindDiscrete, false},
	{FieldCustomerCancelReason, "Reason for cancelling by Customer", KindText, false},
	{FieldCancelledByDriver, "Cancelled Rides by Driver", KindDiscrete, false},
	{FieldDriverCancelReason, "Driver Cancellation Reason", KindText, false},
	{FieldIncompleteRides, "Incomplete Rides", KindDiscrete, false},
	{FieldIncompleteReason, "Incomplete Rides Reason", KindText, false},
	{FieldBookingValue, "Booking Value", KindContinuous, false},
	{FieldRideDistance, "Ride Distance", KindContinuous, false},
	{FieldDriverRating, "Driver Ratings", KindDiscrete, false},
	{FieldCustomerRating, "Customer Rating", KindDiscrete, false},
	{FieldPaymentMethod, "Payment Method", KindCategorical, false},
	{FieldHour, "Hour", KindDiscrete, true},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(columns))
	for _, c := range columns {
		m[strings.ToLower(c.Name)] = c.Field
	}
	return m
}()

// Columns returns the schema in column order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns[:])
	return out
}

// SourceColumns returns the columns that must be present in the input file.
func SourceColumns() []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		if !c.Derived {
			out = append(out, c)
		}
	}
	return out
}

// ParseField resolves a column name, case-insensitively.
func ParseField(name string) (Field, error) {
	if f, ok := fieldsByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Valid reports whether f names a schema column.
func (f Field) Valid() bool { return f >= 0 && f < fieldCount }

// Column returns the schema entry for f.
func (f Field) Column() Column {
	if !f.Valid() {
		return Column{Field: f, Name: fmt.Sprintf("Field(%d)", int(f))}
	}
	return columns[f]
}

func (f Field) String() string { return f.Column().Name }

// Kind returns the semantic kind of f.
func (f Field) Kind() Kind { return f.Column().Kind }

// Numeric reports whether f holds numbers.
func (f Field) Numeric() bool { return f.Valid() && f.Kind().Numeric() }

// Categorical reports whether f holds labels that can be grouped.
func (f Field) Categorical() bool {
	if !f.Valid() {
		return false
	}
	switch f.Kind() {
	case KindCategorical, KindText, KindTime:
		return true
	}
	return false
}

// MarshalJSON encodes the field by column name.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// NumericFields lists the columns coerced from text to numbers, plus Hour.
func NumericFields() []Field {
	return []Field{
		FieldAvgVTAT, FieldAvgCTAT,
		FieldCancelledByCustomer, FieldCancelledByDriver, FieldIncompleteRides,
		FieldBookingValue, FieldRideDistance,
		FieldDriverRating, FieldCustomerRating,
		FieldHour,
	}
}

// Booking status values used by the analyses.
const (
	StatusCompleted           = "Completed"
	StatusCancelledByCustomer = "Cancelled by Customer"
	StatusCancelledByDriver   = "Cancelled by Driver"
	StatusIncomplete          = "Incomplete"
	StatusNoDriverFound       = "No Driver Found"
)
