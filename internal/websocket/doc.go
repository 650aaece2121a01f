// Package websocket pushes dataset events to connected dashboards.
//
// A single Hub goroutine owns the client set. Broadcast encodes an
// events.Message and queues it without blocking; the hub fans it out to every
// client's buffered send channel and drops clients that cannot keep up. Each
// Client runs a read pump, which only accepts heartbeats, and a write pump
// that also pings the peer.
package websocket
