package dataprocessing

import "errors"

// Sentinel errors returned by the cleaning pipeline. Callers match them with
// errors.Is; the wrapped message carries the path or column involved.
var (
	ErrFileNotFound     = errors.New("dataset file not found")
	ErrParse            = errors.New("dataset could not be parsed")
	ErrSchema           = errors.New("dataset does not match the ride bookings schema")
	ErrColumnAllMissing = errors.New("column has no values to impute from")
	ErrUnknownColumn    = errors.New("unknown column")
)
