package server

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/niki4/lwm2m-server/coap"
	"github.com/niki4/lwm2m-server/directory"
	"github.com/niki4/lwm2m-server/lifecycle"
	"github.com/niki4/lwm2m-server/lwlog"
	"github.com/niki4/lwm2m-server/observation"
	"github.com/niki4/lwm2m-server/transaction"
)

// Socket is the minimal transport surface runOnce needs: a timeout-bounded
// read of one datagram. A real deployment backs this with *net.UDPConn;
// tests back it with an in-memory fake.
type Socket interface {
	// ReadFrom blocks for at most budget waiting for one datagram. A
	// zero n with a nil error means the budget elapsed with nothing to
	// read.
	ReadFrom(budget time.Duration) (n int, addr net.Addr, buf []byte, err error)
}

// Server is the top-level orchestrator: it owns the Client Directory,
// Lifecycle Queue, Delete Grace list, Observation Registry, and the
// Protocol Engine Driver, and runs the Server Loop under a single mutex.
type Server struct {
	mu sync.Mutex

	cfg    Config
	engine coap.Engine
	socket Socket
	log    lwlog.Logger

	state State

	dir    *directory.Directory
	queue  lifecycle.Queue
	grace  lifecycle.GraceList
	obs    *observation.Registry
	spin   *transaction.Spinner

	observers  []observerEntry
	nextHandle int
}

// New builds a Server around engine and socket. The Server does not call
// engine.Init or start the loop; call Start for that.
func New(engine coap.Engine, socket Socket, cfg Config, log lwlog.Logger) *Server {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 100 * time.Millisecond
	}
	if cfg.GraceMultiplier <= 0 {
		cfg.GraceMultiplier = lifecycle.GraceMultiplier
	}
	if cfg.BlockingDeadline <= 0 {
		cfg.BlockingDeadline = transaction.DefaultDeadline
	}
	if log == nil {
		log = lwlog.NoopLogger{}
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		socket: socket,
		log:    log,
		dir:    directory.New(),
		obs:    observation.New(),
	}
	s.obs.SetLogger(log)
	s.spin = &transaction.Spinner{
		Threaded: cfg.Threaded,
		RunOnce:  s.runOnce,
		Lock:     s.mu.Lock,
		Unlock:   s.mu.Unlock,
	}
	return s
}

// Start initializes the engine, registers the monitoring callback, and --
// in threaded mode -- launches the dedicated loop goroutine. In
// non-threaded mode the loop is driven entirely by blocking spins, matching
// original_source's #ifndef OPCUA_LWM2M_SERVER_USE_THREAD branch.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrAlreadyRunning
	}

	if err := s.engine.Init(); err != nil {
		return fmt.Errorf("server: engine init: %w", err)
	}
	s.engine.SetMonitoringCallback(s.onMonitor)
	s.state = StateRunning

	if s.cfg.Threaded {
		go s.loop()
	}
	return nil
}

// loop drives runOnce continuously; only used in threaded mode.
func (s *Server) loop() {
	for {
		s.mu.Lock()
		if s.state != StateRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if err := s.runOnce(); err != nil {
			s.logError("server_loop", err)
		}
	}
}

// Stop tears down the engine. Any Read/Write/Observe slots still pending
// remain at their sentinel; the caller's own deadline bounds that wait,
// enforced by transaction.Spinner.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}
	s.state = StateStopped

	if err := s.engine.Close(); err != nil {
		return fmt.Errorf("server: engine close: %w", err)
	}
	return nil
}

// runOnce performs the nine numbered steps of the Server Loop. The caller
// must NOT hold s.mu; runOnce acquires and releases it itself so that it
// can be safely invoked both from the dedicated loop goroutine and from a
// blocking spin's RunOnce hook.
func (s *Server) runOnce() error {
	s.mu.Lock()

	s.drainLifecycle()
	s.sweepGrace()

	budget, err := s.engine.Step(s.cfg.StepBudget)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("server: engine step: %w", err)
	}
	if budget <= 0 {
		budget = s.cfg.StepBudget
	}

	s.mu.Unlock()

	n, addr, buf, err := s.socket.ReadFrom(budget)
	if err != nil {
		return fmt.Errorf("server: socket read: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n > 0 {
		conns := s.engine.Connections()
		conn, ok := conns.Find(addr)
		if !ok {
			conn = conns.NewIncoming(addr)
		}
		if err := s.engine.HandlePacket(conn, buf[:n]); err != nil {
			return fmt.Errorf("server: handle packet: %w", err)
		}
	}
	return nil
}

// drainLifecycle fans out every queued lifecycle event to registered
// observers, in FIFO arrival order. Called with s.mu held.
func (s *Server) drainLifecycle() {
	for _, ev := range s.queue.Drain() {
		s.fanOut(ev)
	}
}

func (s *Server) fanOut(ev lifecycle.Event) {
	out := Event{DeviceName: ev.DeviceName, Kind: EventKind(ev.Kind)}
	for _, e := range s.observers {
		e.obs.OnEvent(out)
	}
	s.log.Log(lwlog.Event{
		Timestamp:  time.Now(),
		Category:   lwlog.CategoryLifecycle,
		DeviceName: ev.DeviceName,
		Lifecycle:  &lwlog.LifecycleEventData{Kind: ev.Kind.String()},
	})
}

// sweepGrace purges every grace-expired Device's Observation Entries, then
// the Device itself. Called with s.mu held.
func (s *Server) sweepGrace() {
	for _, entry := range s.grace.Sweep(time.Now()) {
		s.obs.PurgeDevice(entry.Device)
		s.log.Log(lwlog.Event{
			Timestamp:  time.Now(),
			Category:   lwlog.CategoryLifecycle,
			DeviceName: entry.Device.Name,
			Lifecycle:  &lwlog.LifecycleEventData{Kind: "grace_evicted"},
		})
	}
}

// HasDevice reports whether name is currently registered, mirroring
// original_source's hasDevice (which additionally required the server to
// be alive; Go's Server has no comparable "not yet started" false-positive
// since a Server with no engine cannot exist).
func (s *Server) HasDevice(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Has(name)
}

// Device returns the registered Device named name.
func (s *Server) Device(name string) (*directory.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Get(name)
}

// Devices returns every currently registered Device.
func (s *Server) Devices() []*directory.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.All()
}

// RegisterObserver adds a lifecycle event observer, invoked synchronously
// under the server lock for every drained event, and returns a handle for
// later removal via DeregisterObserver. Observers MUST NOT call back into
// Read/Write/Observe on this Server.
func (s *Server) RegisterObserver(obs Observer) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	handle := s.nextHandle
	s.observers = append(s.observers, observerEntry{handle: handle, obs: obs})
	return handle
}

// DeregisterObserver removes the observer registered under handle. A no-op
// if handle was never registered.
func (s *Server) DeregisterObserver(handle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.observers {
		if e.handle == handle {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// WithLock runs fn while holding the Server's internal lock. A real
// coap.Engine only ever invokes its monitoring/result callbacks from
// within an already-locked Step/HandlePacket, so onMonitor never locks on
// its own; callers driving an in-memory reference engine directly (e.g.
// coaptest.Engine's Register/Update/Deregister, which invoke the callback
// synchronously with no lock of their own) must wrap that call in WithLock
// to preserve the same invariant.
func (s *Server) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Server) logError(context string, err error) {
	s.log.Log(lwlog.Event{
		Timestamp: time.Now(),
		Category:  lwlog.CategoryError,
		Error:     &lwlog.ErrorEventData{Context: context, Message: err.Error()},
	})
}
