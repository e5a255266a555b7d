package lwdiscovery

import (
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser starts and stops the mDNS advertisement of one LWM2M server. A
// server instance only ever advertises itself once under a single service
// type, so this surface is Advertise/Update/Stop rather than a per-zone map.
type Advertiser interface {
	Advertise(info Info) error
	Update(info Info) error
	Stop() error
}

// Config controls advertiser behavior.
type Config struct {
	// Interface restricts advertising to one network interface; empty
	// means all interfaces.
	Interface string

	// TTL is the DNS record TTL. Defaults to DefaultTTL if zero.
	TTL int
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	cfg Config

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates an advertiser that has not yet registered any
// service.
func NewMDNSAdvertiser(cfg Config) *MDNSAdvertiser {
	return &MDNSAdvertiser{cfg: cfg}
}

// Advertise registers info as the server's mDNS service, replacing any
// previous advertisement.
func (a *MDNSAdvertiser) Advertise(info Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instance := info.ServerName
	if instance == "" {
		instance = "lwm2m-server"
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	txt := TXTRecordsToStrings(EncodeTXT(info))

	var opts []zeroconf.ServerOption
	ttl := a.cfg.TTL
	if ttl <= 0 {
		ttl = int(DefaultTTL.Seconds())
	}
	opts = append(opts, zeroconf.TTL(uint32(ttl)))

	server, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, a.interfaces(), opts...)
	if err != nil {
		return fmt.Errorf("lwdiscovery: register: %w", err)
	}
	a.server = server
	return nil
}

// Update replaces the advertised TXT records without tearing down and
// re-registering the service.
func (a *MDNSAdvertiser) Update(info Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}

	a.server.SetText(TXTRecordsToStrings(EncodeTXT(info)))
	return nil
}

// Stop tears down the advertisement, if any.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.Shutdown()
	a.server = nil
	return nil
}

func (a *MDNSAdvertiser) interfaces() []net.Interface {
	if a.cfg.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.cfg.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

var _ Advertiser = (*MDNSAdvertiser)(nil)
