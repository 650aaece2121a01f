package services

import "errors"

// Service errors. Loader failures are wrapped in ErrDatasetUnavailable so
// handlers can answer 503 while errors.Is still finds the dataprocessing
// sentinel underneath.
var (
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrInvalidLimit       = errors.New("invalid row limit")
)
