package services

import (
	"fmt"
	"time"

	"ridepulse/internal/analysis"
	"ridepulse/internal/dataprocessing"
)

// Selection is a dashboard filter as submitted by a client. A nil slice
// selects every value present in the data while a non-nil empty slice
// selects nothing. The date range applies only when both bounds are set.
type Selection struct {
	From     time.Time
	To       time.Time
	Vehicles []string
	Statuses []string
}

// Validate rejects a reversed date range.
func (s Selection) Validate() error {
	if !s.From.IsZero() && !s.To.IsZero() && s.From.After(s.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidSelection,
			s.From.Format(dataprocessing.DateLayout), s.To.Format(dataprocessing.DateLayout))
	}
	return nil
}

// Predicate resolves s against clean, filling omitted parts from the
// default selection.
func (s Selection) Predicate(clean *dataprocessing.Table) analysis.Predicate {
	p := analysis.DefaultPredicate(clean)

	switch {
	case !s.From.IsZero() && !s.To.IsZero():
		p.From, p.To = s.From, s.To
	case !s.From.IsZero() || !s.To.IsZero():
		p.From, p.To = time.Time{}, time.Time{}
	}

	if s.Vehicles != nil {
		p.Vehicles = s.Vehicles
	}
	if s.Statuses != nil {
		p.Statuses = s.Statuses
	}
	return p
}
