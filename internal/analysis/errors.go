package analysis

import "errors"

var (
	// ErrNotNumeric is returned when a numeric statistic is asked of a
	// column that does not hold numbers.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrNotCategorical is returned when grouping by a column that does not
	// hold labels.
	ErrNotCategorical = errors.New("column is not categorical")
	// ErrEmptySelection marks a report section with no rows to work on.
	ErrEmptySelection = errors.New("no rides match the current filters")
)
