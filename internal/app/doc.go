// Package app wires the RidePulse dashboard server: configuration, logging,
// OpenTelemetry, the dashboard service, the WebSocket hub and the HTTP
// router.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, an optional YAML file and RIDE_*
//     environment variables
//  2. Initialize logging and observability
//  3. Create the WebSocket hub, the dashboard service and the health service
//  4. Set up HTTP handlers and middleware
//  5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then stops the dataset watcher, drains
// active requests, closes WebSocket clients and flushes telemetry.
//
// Start refuses to listen when the dataset cannot be loaded. Once running, a
// file that later breaks makes data endpoints answer 503 until the watcher or
// a reload picks up a fixed file.
package app
