// Package http implements the HTTP handlers of the ride dashboard. It is a
// thin layer between HTTP transport and the dashboard service: handlers
// parse and validate the request, call the service and format the answer.
//
// # Filters
//
// Analysis, chart and export endpoints share one set of query parameters:
//
//	from, to   YYYY-MM-DD; the range applies only when both are given
//	vehicle    repeatable; "vehicle=" alone selects no vehicle type
//	status     repeatable; "status=" alone selects no booking status
//
// # Errors
//
// Service sentinels are mapped to API errors in mapServiceError and written
// as RFC 7807 problem documents by the shared ErrorHandler:
//
//	dataset unavailable          503
//	invalid filter or parameter  400
//	unknown chart or column      404
//	no rows to plot              422
//
// A report whose sections fail still answers 200; each failing section
// carries available=false and a message.
//
// # Streaming
//
// Exports and charts are written straight to the response. Headers are
// applied on the first byte so a failure before any output can still be
// answered with a problem document.
package http
