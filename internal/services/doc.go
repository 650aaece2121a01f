// Package services implements the business logic layer of RidePulse. It sits
// between the HTTP handlers (and the CLI) and the dataprocessing and analysis
// packages.
//
// # Services
//
//   - DashboardService: serves the cleaned ride dataset and every analysis
//     view over a user Selection
//   - DatasetWatcher: polls the dataset file and reloads it on change
//   - HealthService: health, readiness and liveness probes
//
// # Request Cycle
//
// Each call takes one immutable Snapshot from the dataset cache, resolves the
// Selection into an analysis.Predicate, filters and computes. Nothing is
// shared between requests except the Snapshot.
//
// # Error Handling
//
// Loader failures are wrapped in ErrDatasetUnavailable. Invalid filters
// return ErrInvalidSelection and bad row limits ErrInvalidLimit. Analysis
// sections that cannot be computed for a selection are not errors: they come
// back as analysis.Section values with Available set to false.
//
// # Events
//
// Reload publishes dataset:reloaded or dataset:error through the WebSocketHub
// so open dashboards can refresh.
package services
