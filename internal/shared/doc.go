// Package shared groups helpers used across RidePulse packages that belong
// to no single layer.
//
// The testutil subpackage provides the ride CSV fixtures every pipeline test
// builds on and a buffered slog handler for asserting on log output:
//
//	func TestSomething(t *testing.T) {
//	    path := testutil.WriteRideCSV(t, testutil.SampleRides()...)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset loaded")
//	}
//
// Nothing here may import domain packages, so any package can use it in
// tests without creating cycles.
package shared
