package transaction

import "github.com/niki4/lwm2m-server/coap"

// Slot is an Observation-Parameter-shaped correlation record: it carries a
// submitted DM request's eventual result.
// Blocking callers own a Slot on the stack (conceptually -- Go allocates
// it on the heap since the result callback closure captures it);
// non-blocking callers own one for as long as they care about the result.
type Slot struct {
	// Status starts at StatusNone and is set exactly once, by the
	// engine's result callback, to the transaction's terminal status.
	Status coap.Status

	// Data is the raw payload delivered with the result (Read only).
	Data []byte

	// DataLen is the parsed value length once the caller has run
	// coap.Engine.DataParse over Data; -1 until parsed.
	DataLen int

	ClientID coap.ClientID
	URI      coap.URI
	Format   coap.Format
}

// NewSlot returns a Slot initialized to the not-yet-completed sentinel.
func NewSlot(client coap.ClientID, uri coap.URI) *Slot {
	return &Slot{Status: coap.StatusNone, DataLen: -1, ClientID: client, URI: uri}
}

// Pending reports whether the slot has not yet received a terminal
// status.
func (s *Slot) Pending() bool {
	return s.Status == coap.StatusNone
}

// Complete fills in the slot's terminal result. Called from the engine's
// result callback, under the server lock.
func (s *Slot) Complete(status coap.Status, format coap.Format, data []byte) {
	s.Status = status
	s.Format = format
	s.Data = data
}
