package coap

import "net"

// Connection identifies a client's transport-level address as seen by the
// engine. The server looks one up (or creates it on first sight) when a
// datagram arrives, then hands both the datagram and the Connection to
// HandlePacket.
type Connection struct {
	Addr net.Addr
}

// ConnectionList is the engine-owned set of known connections, mutated
// only under the server lock per spec's concurrency model.
type ConnectionList interface {
	// Find returns the existing Connection for addr, if any.
	Find(addr net.Addr) (*Connection, bool)

	// NewIncoming creates and registers a Connection for addr, for use on
	// first sight of a client.
	NewIncoming(addr net.Addr) *Connection

	// Free releases a Connection, e.g. once its owning Device has left
	// the grace list.
	Free(conn *Connection)
}
