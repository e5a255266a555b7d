package coap

import "time"

// ClientID is the engine's ephemeral per-registration identifier,
// reassigned on every re-registration (directory.Device.InternalID mirrors
// this value).
type ClientID uint16

// MonitoringCallback is invoked by the engine on registration-lifecycle
// transitions: new registration (StatusCreated), update
// (StatusChanged), or deregistration (StatusDeleted). name is the
// client's advertised endpoint name; lifetime is the advertised
// registration lifetime as a time.Duration (meaningful only for
// StatusCreated/StatusChanged).
type MonitoringCallback func(client ClientID, name string, status Status, lifetime time.Duration)

// ResultCallback is invoked once a submitted Read, Write, Observe, or
// ObserveCancel completes, whether with a success status or a
// transaction-layer failure. data is the raw payload (empty for Write/
// ObserveCancel results); userdata is the opaque value the submitter
// passed through, round-tripped unchanged.
type ResultCallback func(client ClientID, uri URI, status Status, format Format, data []byte, userdata any)

// Engine is the library-neutral binding to an external CoAP/LWM2M engine,
// per the verb table. A conforming engine owns its own context and
// connection bookkeeping; this interface is the entire surface the server
// package depends on, so a real implementation (DTLS, retransmission,
// block-wise transfer) and the in-memory coaptest fake are
// interchangeable.
type Engine interface {
	// Init creates the engine context. Called once at server startup.
	Init() error

	// Close tears down the engine context. Called once at server
	// shutdown; any transaction slots left pending remain at their
	// sentinel status.
	Close() error

	// Step pumps the engine's internal state machine (retransmission
	// timers, pending confirmables). budget is the caller's requested
	// timeout; Step returns the engine's own preferred next wakeup so the
	// server loop can shrink its socket select accordingly.
	Step(budget time.Duration) (next time.Duration, err error)

	// HandlePacket feeds one received datagram to the engine for
	// decoding and dispatch; it may synchronously invoke the monitoring
	// or result callbacks registered below.
	HandlePacket(conn *Connection, data []byte) error

	// SetMonitoringCallback registers the single callback invoked for
	// every registration-lifecycle transition across all clients.
	SetMonitoringCallback(fn MonitoringCallback)

	// Read submits a DM Read. fn is invoked with the result; userdata is
	// round-tripped into fn unchanged. Returns a submission-level error
	// if the engine rejects the request outright (bad URI, unknown
	// client, queue full) -- in that case fn is never invoked.
	Read(client ClientID, uri URI, fn ResultCallback, userdata any) error

	// Write submits a DM Write with the given content format and
	// payload.
	Write(client ClientID, uri URI, format Format, data []byte, fn ResultCallback, userdata any) error

	// Observe submits an Observe (start) request.
	Observe(client ClientID, uri URI, fn ResultCallback, userdata any) error

	// ObserveCancel submits a Cancel-Observe request.
	ObserveCancel(client ClientID, uri URI, fn ResultCallback, userdata any) error

	// DataParse decodes a raw payload for uri into zero or more Values.
	// For a Resource-scoped uri this yields at most one Value; for an
	// Object-scoped uri it yields one Value per Resource ID the payload
	// covered.
	DataParse(uri URI, data []byte, format Format) ([]Value, error)

	// Connections returns the engine's connection list, used by the
	// server loop to resolve an incoming datagram's remote address.
	Connections() ConnectionList
}
