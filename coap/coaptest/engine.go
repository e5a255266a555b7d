// Package coaptest provides a deterministic in-memory fake of coap.Engine
// for exercising the server package without a real CoAP/DTLS stack. It
// models just enough of the wire protocol to drive registration,
// Read/Write, and Observe/notify sequences under test control.
package coaptest

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/niki4/lwm2m-server/coap"
)

// pendingObserve tracks a live Observe subscription so the test can push
// notifications through NotifyResource/NotifyObject.
type pendingObserve struct {
	client ClientID
	uri    coap.URI
	fn     coap.ResultCallback
	ud     any
}

// ClientID is re-exported for test ergonomics; identical to coap.ClientID.
type ClientID = coap.ClientID

// Engine is a fake coap.Engine. Tests drive it directly: Register/Update/
// Deregister simulate monitoring-callback arrivals, RespondRead/
// RespondWrite/RespondObserve complete a submitted transaction, and
// NotifyResource/NotifyObject deliver unsolicited notifications to active
// observes.
//
// Engine is safe for concurrent use; the server package always calls it
// under its own lock, but tests may also poke it directly from a separate
// goroutine (e.g. to simulate an asynchronous client).
type Engine struct {
	mu sync.Mutex

	monitor MonitoringCallback

	// nextClientID assigns ClientIDs to simulated registrations.
	nextClientID coap.ClientID

	// pending holds submitted Read/Write/Observe/ObserveCancel calls
	// keyed by a monotonic submission ID, until the test calls the
	// matching Respond* method.
	pending map[uint64]pendingCall
	nextSub uint64

	// observes holds currently-active (post-success) Observe
	// subscriptions, keyed by (client, uri string), for NotifyResource/
	// NotifyObject to address.
	observes map[string]pendingObserve

	conns *connList

	// FailInit, when set, makes Init return this error.
	FailInit error

	// RejectSubmission, when non-nil, makes every Read/Write/Observe/
	// ObserveCancel submission fail synchronously with this error
	// instead of queuing a pending call.
	RejectSubmission error

	closed bool
}

type pendingCall struct {
	kind   callKind
	client coap.ClientID
	uri    coap.URI
	fn     coap.ResultCallback
	ud     any
}

type callKind int

const (
	callRead callKind = iota
	callWrite
	callObserve
	callObserveCancel
)

type MonitoringCallback = coap.MonitoringCallback

// New creates an empty fake engine.
func New() *Engine {
	return &Engine{
		pending:  make(map[uint64]pendingCall),
		observes: make(map[string]pendingObserve),
		conns:    newConnList(),
	}
}

func (e *Engine) Init() error {
	if e.FailInit != nil {
		return e.FailInit
	}
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Step is a no-op for the fake: there are no retransmission timers to
// pump. It always reports the full requested budget as its next wakeup.
func (e *Engine) Step(budget time.Duration) (time.Duration, error) {
	return budget, nil
}

// HandlePacket is unused by tests that drive the fake directly via
// Register/RespondRead/etc; it exists to satisfy coap.Engine.
func (e *Engine) HandlePacket(conn *coap.Connection, data []byte) error {
	return nil
}

func (e *Engine) SetMonitoringCallback(fn coap.MonitoringCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.monitor = fn
}

func (e *Engine) Connections() coap.ConnectionList {
	return e.conns
}

func (e *Engine) Read(client coap.ClientID, uri coap.URI, fn coap.ResultCallback, userdata any) error {
	return e.submit(callRead, client, uri, fn, userdata)
}

func (e *Engine) Write(client coap.ClientID, uri coap.URI, format coap.Format, data []byte, fn coap.ResultCallback, userdata any) error {
	return e.submit(callWrite, client, uri, fn, userdata)
}

func (e *Engine) Observe(client coap.ClientID, uri coap.URI, fn coap.ResultCallback, userdata any) error {
	return e.submit(callObserve, client, uri, fn, userdata)
}

func (e *Engine) ObserveCancel(client coap.ClientID, uri coap.URI, fn coap.ResultCallback, userdata any) error {
	return e.submit(callObserveCancel, client, uri, fn, userdata)
}

func (e *Engine) submit(kind callKind, client coap.ClientID, uri coap.URI, fn coap.ResultCallback, userdata any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.RejectSubmission != nil {
		return e.RejectSubmission
	}

	e.nextSub++
	id := e.nextSub
	e.pending[id] = pendingCall{kind: kind, client: client, uri: uri, fn: fn, ud: userdata}
	return nil
}

// DataParse performs a trivial decode: for an Object-scoped uri the data
// is interpreted as the test-authored sequence of (resourceID, length,
// data) records built by EncodeObjectPayload; for a Resource-scoped uri the
// data is the Resource's raw value verbatim.
func (e *Engine) DataParse(uri coap.URI, data []byte, format coap.Format) ([]coap.Value, error) {
	if uri.IsObject() {
		return DecodeObjectPayload(data)
	}
	return []coap.Value{{ResourceID: *uri.ResourceID, Data: data}}, nil
}

// --- Test-control surface -------------------------------------------------

// Register simulates a new client registration arriving (StatusCreated),
// assigning and returning a fresh ClientID.
func (e *Engine) Register(name string, lifetime time.Duration) coap.ClientID {
	e.mu.Lock()
	e.nextClientID++
	id := e.nextClientID
	monitor := e.monitor
	e.mu.Unlock()

	if monitor != nil {
		monitor(id, name, coap.StatusCreated, lifetime)
	}
	return id
}

// Update simulates a registration-update callback (StatusChanged) for an
// already-registered client.
func (e *Engine) Update(client coap.ClientID, name string, lifetime time.Duration) {
	e.mu.Lock()
	monitor := e.monitor
	e.mu.Unlock()

	if monitor != nil {
		monitor(client, name, coap.StatusChanged, lifetime)
	}
}

// Deregister simulates a deregistration callback (StatusDeleted).
func (e *Engine) Deregister(client coap.ClientID, name string) {
	e.mu.Lock()
	monitor := e.monitor
	e.mu.Unlock()

	if monitor != nil {
		monitor(client, name, coap.StatusDeleted, 0)
	}
}

// takePending finds the most recently submitted pending call for
// (client, uri, kind), removing it from the pending set.
func (e *Engine) takePending(client coap.ClientID, uri coap.URI, kind callKind) (pendingCall, bool) {
	var latest uint64
	for id, pc := range e.pending {
		if id > latest && pc.client == client && pc.kind == kind && sameURI(pc.uri, uri) {
			latest = id
		}
	}
	if latest == 0 {
		return pendingCall{}, false
	}
	pc := e.pending[latest]
	delete(e.pending, latest)
	return pc, true
}

func sameURI(a, b coap.URI) bool {
	if a.ObjectID != b.ObjectID || a.InstanceID != b.InstanceID {
		return false
	}
	if (a.ResourceID == nil) != (b.ResourceID == nil) {
		return false
	}
	if a.ResourceID != nil && *a.ResourceID != *b.ResourceID {
		return false
	}
	return true
}

// RespondRead completes the most recent pending Read on (client, uri) with
// the given status and payload.
func (e *Engine) RespondRead(client coap.ClientID, uri coap.URI, status coap.Status, format coap.Format, data []byte) error {
	return e.respond(client, uri, callRead, status, format, data)
}

// RespondWrite completes the most recent pending Write on (client, uri).
func (e *Engine) RespondWrite(client coap.ClientID, uri coap.URI, status coap.Status) error {
	return e.respond(client, uri, callWrite, status, 0, nil)
}

// RespondObserve completes the most recent pending Observe on (client,
// uri). On success, the subscription becomes active for subsequent
// NotifyResource/NotifyObject calls.
func (e *Engine) RespondObserve(client coap.ClientID, uri coap.URI, status coap.Status) error {
	e.mu.Lock()
	pc, ok := e.takePending(client, uri, callObserve)
	if ok && status == coap.StatusContent {
		e.observes[obsKey(client, uri)] = pendingObserve{client: client, uri: uri, fn: pc.fn, ud: pc.ud}
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("coaptest: no pending observe for client %d uri %s", client, uri)
	}
	pc.fn(client, uri, status, 0, nil, pc.ud)
	return nil
}

// RespondObserveCancel completes the most recent pending ObserveCancel on
// (client, uri). On success, the active subscription (if any) is removed.
func (e *Engine) RespondObserveCancel(client coap.ClientID, uri coap.URI, status coap.Status) error {
	e.mu.Lock()
	pc, ok := e.takePending(client, uri, callObserveCancel)
	if ok && status == coap.StatusDeleted {
		delete(e.observes, obsKey(client, uri))
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("coaptest: no pending observe-cancel for client %d uri %s", client, uri)
	}
	pc.fn(client, uri, status, 0, nil, pc.ud)
	return nil
}

func (e *Engine) respond(client coap.ClientID, uri coap.URI, kind callKind, status coap.Status, format coap.Format, data []byte) error {
	e.mu.Lock()
	pc, ok := e.takePending(client, uri, kind)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("coaptest: no pending call for client %d uri %s", client, uri)
	}
	pc.fn(client, uri, status, format, data, pc.ud)
	return nil
}

// NotifyResource delivers an unsolicited notification to the active
// Resource-scoped Observe on (client, uri), if any.
func (e *Engine) NotifyResource(client coap.ClientID, uri coap.URI, data []byte) error {
	return e.notify(client, uri, coap.FormatText, data)
}

// NotifyObject delivers an unsolicited notification to the active
// Object-scoped Observe on (client, uri), with data already TLV-encoded
// via EncodeObjectPayload.
func (e *Engine) NotifyObject(client coap.ClientID, uri coap.URI, data []byte) error {
	return e.notify(client, uri, coap.FormatTLV, data)
}

func (e *Engine) notify(client coap.ClientID, uri coap.URI, format coap.Format, data []byte) error {
	e.mu.Lock()
	ob, ok := e.observes[obsKey(client, uri)]
	e.mu.Unlock()

	if !ok {
		return errors.New("coaptest: no active observe for that client/uri")
	}
	ob.fn(client, uri, coap.StatusContent, format, data, ob.ud)
	return nil
}

func obsKey(client coap.ClientID, uri coap.URI) string {
	return fmt.Sprintf("%d:%s", client, uri)
}

var _ coap.Engine = (*Engine)(nil)

// connList is a trivial coap.ConnectionList backed by a map keyed on the
// address string.
type connList struct {
	mu    sync.Mutex
	conns map[string]*coap.Connection
}

func newConnList() *connList {
	return &connList{conns: make(map[string]*coap.Connection)}
}

func (c *connList) Find(addr net.Addr) (*coap.Connection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.conns[addr.String()]
	return conn, ok
}

func (c *connList) NewIncoming(addr net.Addr) *coap.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn := &coap.Connection{Addr: addr}
	c.conns[addr.String()] = conn
	return conn
}

func (c *connList) Free(conn *coap.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn.Addr.String())
}
