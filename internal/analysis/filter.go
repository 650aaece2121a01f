package analysis

import (
	"time"

	"ridepulse/internal/dataprocessing"
)

// Predicate selects rows of a clean table. From and To bound the calendar
// date inclusively and only apply when both are set. Vehicles and Statuses
// are allow-lists: an empty list matches nothing.
type Predicate struct {
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Vehicles []string  `json:"vehicles"`
	Statuses []string  `json:"statuses"`
}

// HasDateRange reports whether the date constraint is active.
func (p Predicate) HasDateRange() bool {
	return !p.From.IsZero() && !p.To.IsZero()
}

// DefaultPredicate selects every row of t: its full date range and every
// vehicle type and status present.
func DefaultPredicate(t *dataprocessing.Table) Predicate {
	p := Predicate{
		Vehicles: t.Distinct(dataprocessing.FieldVehicleType),
		Statuses: t.Distinct(dataprocessing.FieldBookingStatus),
	}
	if first, last, ok := t.DateRange(); ok {
		p.From, p.To = first, last
	}
	return p
}

// Apply returns the rows of t that satisfy p, in table order. t is not
// modified.
func Apply(t *dataprocessing.Table, p Predicate) *dataprocessing.Table {
	vehicles := toSet(p.Vehicles)
	statuses := toSet(p.Statuses)
	dated := p.HasDateRange()
	from, to := calendarDay(p.From), calendarDay(p.To)

	return t.Select(func(r *dataprocessing.Record) bool {
		if dated {
			day, ok := r.Day()
			if !ok || day.Before(from) || day.After(to) {
				return false
			}
		}
		v, _ := r.Text(dataprocessing.FieldVehicleType)
		if _, ok := vehicles[v]; !ok {
			return false
		}
		_, ok := statuses[r.Status()]
		return ok
	})
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
