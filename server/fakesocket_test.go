package server

import (
	"net"
	"time"
)

// fakeSocket is an in-memory Socket that never has a datagram to deliver;
// runOnce's socket read always reports a harmless empty budget timeout, so
// the loop's lifecycle/grace/step housekeeping can be exercised without a
// real UDP listener. Mirrors observation's fake Spinner.RunOnce, which
// returns immediately for the same reason.
type fakeSocket struct{}

func (fakeSocket) ReadFrom(budget time.Duration) (int, net.Addr, []byte, error) {
	return 0, nil, nil, nil
}

var _ Socket = fakeSocket{}
