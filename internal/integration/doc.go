// Package integration holds end-to-end tests that run the assembled
// application behind a real HTTP server. Run them with go test; they are
// skipped under -short.
package integration
