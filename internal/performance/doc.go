// Package performance holds benchmarks of the cleaning and analysis pipeline
// and load tests of the HTTP endpoints. Load tests are skipped under -short.
package performance
