// Package analysis computes descriptive statistics and a hypothesis test
// over a filtered view of the clean ride bookings table.
//
// Apply narrows a table with a Predicate. The aggregate functions (Count,
// Mean, StdDev, Correlation, CountBy and friends) read only the rows they
// are given and return Measure values that are not applicable, rather than
// errors, when the selection is too small. WelchTest compares ride distance
// between completed and cancelled bookings.
//
// BuildReport runs every analysis for one selection. Each part of the
// report is a Section; a section that fails carries a message and the
// others are still computed.
package analysis
