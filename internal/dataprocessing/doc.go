// Package dataprocessing turns the ride bookings CSV export into a clean,
// strongly typed table.
//
// # Architecture
//
// The package is organized as a forward-only pipeline:
//
//  1. Loader: reads the delimited file into a RawTable of text cells
//  2. Normalizer: validates the header against the schema and coerces dates,
//     clock times and numeric columns, turning malformed cells into missing
//     values
//  3. Imputer: fills missing cells with the column median (numeric) or mode
//     (everything else)
//
// Prepare runs all three and returns a Snapshot holding the raw table, the
// clean table and before/after Diagnostics.
//
// # Usage
//
//	cache := dataprocessing.NewCache(nil)
//	snapshot, hit, err := cache.GetOrLoad(ctx, "data/ncr_ride_bookings.csv")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(snapshot.Clean.Len(), hit)
//
// # Schema
//
// Columns are addressed through the Field enum rather than strings. ParseField
// converts user supplied names and fails with ErrUnknownColumn for anything
// outside the schema.
//
// # Error Handling
//
// Only whole-file problems are errors:
//
//   - ErrFileNotFound when the file is absent
//   - ErrParse when the CSV cannot be read
//   - ErrSchema when required columns are missing
//   - ErrColumnAllMissing when a column has no value to impute from
//
// Per-cell problems are never errors; they become missing values and are
// repaired by the imputer.
package dataprocessing
