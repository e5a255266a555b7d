package server

import (
	"net"
	"time"
)

// maxPacketSize bounds a single received datagram, matching
// original_source's LWM2MSERVER_MAX_PACKET_SIZE buffer.
const maxPacketSize = 2048

// UDPSocket adapts a *net.UDPConn to the Socket interface runOnce expects,
// using a read deadline in place of the original's select+recvfrom pair --
// Go's net package has no portable select primitive, so SetReadDeadline is
// the idiomatic substitute for "wait up to budget, then give up".
type UDPSocket struct {
	conn *net.UDPConn
	buf  []byte
}

// NewUDPSocket opens a UDP listener on addr ("" for any interface), in the
// given address family ("udp4" or "udp6", the Go analogue of an
// AF_INET/AF_INET6 configuration knob).
func NewUDPSocket(network, addr string) (*UDPSocket, error) {
	udpAddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP(network, udpAddr)
	if err != nil {
		return nil, err
	}
	return &UDPSocket{conn: conn, buf: make([]byte, maxPacketSize)}, nil
}

// ReadFrom waits up to budget for one datagram.
func (u *UDPSocket) ReadFrom(budget time.Duration) (int, net.Addr, []byte, error) {
	if err := u.conn.SetReadDeadline(time.Now().Add(budget)); err != nil {
		return 0, nil, nil, err
	}
	n, addr, err := u.conn.ReadFrom(u.buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil, nil, nil
		}
		return 0, nil, nil, err
	}
	return n, addr, u.buf, nil
}

// Close releases the underlying UDP connection.
func (u *UDPSocket) Close() error {
	return u.conn.Close()
}

var _ Socket = (*UDPSocket)(nil)
