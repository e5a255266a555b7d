package lwdiscovery

import (
	"errors"
	"time"
)

const (
	// ServiceType is the mDNS service type a LWM2M server advertises
	// itself under.
	ServiceType = "_lwm2m._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default LWM2M CoAP port.
	DefaultPort = 5683
)

// TXT record keys.
const (
	TXTKeyEndpoint = "ep"    // advertised endpoint/server name
	TXTKeyVersion  = "lwm2m" // supported LWM2M enabler version
	TXTKeyBinding  = "b"     // binding mode ("U" for UDP)
)

// Timing constants.
const (
	// DefaultTTL is the DNS record TTL used when Config.TTL is zero.
	DefaultTTL = 120 * time.Second
)

var (
	// ErrNotAdvertising is returned by Stop when nothing is currently
	// being advertised.
	ErrNotAdvertising = errors.New("lwdiscovery: not currently advertising")
)

// Info describes the server instance to advertise.
type Info struct {
	// ServerName is a short identifying name, used to build the mDNS
	// instance name.
	ServerName string

	// Port is the CoAP listen port.
	Port uint16

	// Version is the advertised LWM2M enabler version (e.g. "1.0").
	Version string
}
