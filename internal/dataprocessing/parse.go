package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	dateFormats = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"01-02-2006",
		"1/2/2006",
		"01/02/06",
		"02 Jan 2006",
		"Jan 2, 2006",
	}

	dateTimeFormats = []string{
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05Z07:00",
		"01/02/2006 15:04",
		"01/02/2006 15:04:05",
	}

	// naTokens are the cell values treated as missing on read.
	naTokens = map[string]struct{}{
		"":        {},
		"na":      {},
		"n/a":     {},
		"nan":     {},
		"-nan":    {},
		"null":    {},
		"none":    {},
		"nil":     {},
		"#n/a":    {},
		"<na>":    {},
		"-1.#ind": {},
		"1.#qnan": {},
	}
)

// ClockLayout is the only accepted time-of-day format.
const ClockLayout = "15:04:05"

// IsMissing reports whether a raw cell counts as missing.
func IsMissing(s string) bool {
	_, ok := naTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseDate parses a calendar date or date-time. Date-times are truncated to
// the date in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return time.Time{}, false
	}

	for _, layout := range dateFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}

	for _, layout := range dateTimeFormats {
		if v, err := time.Parse(layout, s); err == nil {
			y, m, d := v.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

// ParseHour extracts the hour of day from an HH:MM:SS clock value.
func ParseHour(s string) (int, bool) {
	v, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v.Hour(), true
}

// ParseFloat coerces a numeric cell. Missing tokens and non-numeric text
// yield ok == false; NaN and infinities are rejected as well.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt reports whether s is an integer literal.
func ParseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}
