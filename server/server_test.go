package server

import (
	"testing"
	"time"

	"github.com/niki4/lwm2m-server/coap"
	"github.com/niki4/lwm2m-server/coap/coaptest"
	"github.com/niki4/lwm2m-server/directory"
)

func newTestServer() (*Server, *coaptest.Engine) {
	engine := coaptest.New()
	s := New(engine, fakeSocket{}, Config{}, nil)
	return s, engine
}

// registerDevice simulates an external registration arriving. onMonitor
// requires s.mu held (it is invoked from within an already-locked
// Step/HandlePacket in production); coaptest.Engine.Register calls the
// monitor callback synchronously with no lock of its own, so the test takes
// the lock itself around the call.
func registerDevice(s *Server, engine *coaptest.Engine, name string, lifetime time.Duration) {
	s.mu.Lock()
	engine.Register(name, lifetime)
	s.mu.Unlock()
}

func updateDevice(s *Server, engine *coaptest.Engine, id coaptest.ClientID, name string, lifetime time.Duration) {
	s.mu.Lock()
	engine.Update(id, name, lifetime)
	s.mu.Unlock()
}

func deregisterDevice(s *Server, engine *coaptest.Engine, id coaptest.ClientID, name string) {
	s.mu.Lock()
	engine.Deregister(id, name)
	s.mu.Unlock()
}

func TestStartStopLifecycle(t *testing.T) {
	s, _ := newTestServer()

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.state != StateRunning {
		t.Fatalf("state = %v, want Running", s.state)
	}
	if err := s.Start(); err != ErrAlreadyRunning {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.state != StateStopped {
		t.Fatalf("state = %v, want Stopped", s.state)
	}
	if err := s.Stop(); err != ErrNotRunning {
		t.Fatalf("second Stop err = %v, want ErrNotRunning", err)
	}
}

func TestRegisterAddsDevice(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	registerDevice(s, engine, "sensor-01", time.Minute)

	if !s.HasDevice("sensor-01") {
		t.Fatal("expected sensor-01 to be registered")
	}
	dev, ok := s.Device("sensor-01")
	if !ok {
		t.Fatal("Device lookup failed")
	}
	if dev.Lifetime != time.Minute {
		t.Errorf("Lifetime = %v, want 1m", dev.Lifetime)
	}
}

func TestReRegisterReplacesWithGrace(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	registerDevice(s, engine, "sensor-01", time.Minute)
	first, _ := s.Device("sensor-01")
	s.mu.Lock()
	s.queue.Drain()
	s.mu.Unlock()

	var events []Event
	s.RegisterObserver(ObserverFunc(func(ev Event) { events = append(events, ev) }))

	registerDevice(s, engine, "sensor-01", 2*time.Minute)

	s.mu.Lock()
	s.drainLifecycle()
	graceLen := s.grace.Len()
	s.mu.Unlock()

	if graceLen != 1 {
		t.Fatalf("grace list len = %d, want 1", graceLen)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (deregistered old, registered new)", len(events))
	}
	if events[0].Kind != EventDeregistered {
		t.Errorf("events[0].Kind = %v, want EventDeregistered", events[0].Kind)
	}
	if events[1].Kind != EventRegistered {
		t.Errorf("events[1].Kind = %v, want EventRegistered", events[1].Kind)
	}

	second, ok := s.Device("sensor-01")
	if !ok {
		t.Fatal("expected sensor-01 still registered after replace")
	}
	if second == first {
		t.Fatal("expected a distinct Device after replace")
	}
	if second.Lifetime != 2*time.Minute {
		t.Errorf("Lifetime = %v, want 2m", second.Lifetime)
	}
}

func TestUpdateRefreshesEndOfLife(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	registerDevice(s, engine, "sensor-01", time.Minute)
	dev, _ := s.Device("sensor-01")
	before := dev.EndOfLife
	s.mu.Lock()
	s.queue.Drain()
	s.mu.Unlock()

	time.Sleep(time.Millisecond)
	updateDevice(s, engine, coaptest.ClientID(dev.InternalID), "sensor-01", 5*time.Minute)

	if dev.Lifetime != 5*time.Minute {
		t.Errorf("Lifetime = %v, want 5m", dev.Lifetime)
	}
	if !dev.EndOfLife.After(before) {
		t.Error("expected EndOfLife to advance after update")
	}

	s.mu.Lock()
	events := s.queue.Drain()
	s.mu.Unlock()
	if len(events) != 1 || events[0].Kind != 2 {
		t.Fatalf("expected a single Updated event, got %+v", events)
	}
}

func TestDeregisterAddsGraceEntry(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	registerDevice(s, engine, "sensor-01", time.Minute)
	dev, _ := s.Device("sensor-01")

	deregisterDevice(s, engine, coaptest.ClientID(dev.InternalID), "sensor-01")

	if s.HasDevice("sensor-01") {
		t.Fatal("expected sensor-01 to be gone from the directory")
	}
	s.mu.Lock()
	graceLen := s.grace.Len()
	s.mu.Unlock()
	if graceLen != 1 {
		t.Fatalf("grace list len = %d, want 1", graceLen)
	}
}

func TestDeregisterUnknownClientIsNoop(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	deregisterDevice(s, engine, 999, "ghost")
	if s.queue.Len() != 0 {
		t.Fatalf("expected no lifecycle event for an unknown client")
	}
}

func TestGraceSweepPurgesObservationsAndDevice(t *testing.T) {
	s, engine := newTestServer()
	s.cfg.GraceMultiplier = 1
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	registerDevice(s, engine, "sensor-01", time.Millisecond)
	dev, _ := s.Device("sensor-01")

	res := &directory.Resource{ResourceID: 0, Capabilities: directory.CanRead}
	obj := &directory.Object{ObjectID: 3, InstanceID: 0}
	obj.AddResource(res)
	dev.AddObject(obj)

	uri := coap.ResourceURI(obj.ObjectID, obj.InstanceID, res.ResourceID)
	client := coaptest.ClientID(dev.InternalID)
	go func() {
		time.Sleep(time.Millisecond)
		_ = engine.RespondObserve(client, uri, coap.StatusContent)
	}()
	if err := s.Observe(res); err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	deregisterDevice(s, engine, coaptest.ClientID(dev.InternalID), "sensor-01")

	time.Sleep(3 * time.Millisecond)
	if err := s.runOnce(); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}

	s.mu.Lock()
	hasEntry := s.obs.HasResourceEntry(res)
	graceLen := s.grace.Len()
	s.mu.Unlock()
	if hasEntry {
		t.Error("expected the resource's observation entry to be purged on grace sweep")
	}
	if graceLen != 0 {
		t.Errorf("grace list len = %d, want 0 after sweep", graceLen)
	}
}

func TestDevicesReturnsAllRegistered(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	registerDevice(s, engine, "a", time.Minute)
	registerDevice(s, engine, "b", time.Minute)

	if got := len(s.Devices()); got != 2 {
		t.Fatalf("Devices() len = %d, want 2", got)
	}
}

func TestRegisterObserverDeregisterObserver(t *testing.T) {
	s, engine := newTestServer()
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var count int
	handle := s.RegisterObserver(ObserverFunc(func(Event) { count++ }))

	registerDevice(s, engine, "sensor-01", time.Minute)
	s.mu.Lock()
	s.drainLifecycle()
	s.mu.Unlock()
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	s.DeregisterObserver(handle)
	registerDevice(s, engine, "sensor-02", time.Minute)
	s.mu.Lock()
	s.drainLifecycle()
	s.mu.Unlock()
	if count != 1 {
		t.Fatalf("count = %d after deregister, want unchanged 1", count)
	}
}
