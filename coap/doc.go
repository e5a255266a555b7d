// Package coap defines the library-neutral binding this server core expects
// from an external CoAP/LWM2M engine: context lifecycle, the step/packet
// pump, monitoring and DM callbacks, and TLV/plain-text data parsing.
//
// The raw wire codec (CoAP framing, DTLS, retransmission, block-wise
// transfer) is an external collaborator. This package owns only the verb
// table a conforming engine must expose and the status/URI/format types
// that cross that boundary. coaptest provides a deterministic in-memory
// fake of Engine for this module's own tests.
package coap
