package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// Measure is a statistic that may be not applicable, for example the mean
// of an empty selection.
type Measure struct {
	Value float64
	Valid bool
}

// NA is the not-applicable measure.
var NA = Measure{}

// Of wraps v, treating NaN and infinities as not applicable.
func Of(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Measure{Value: v, Valid: true}
}

// String formats the value with two decimals or "N/A".
func (m Measure) String() string {
	if !m.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

// MarshalJSON encodes the value, or null when not applicable.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = NA
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Of(v)
	return nil
}
