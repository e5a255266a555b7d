package server

import (
	"time"

	"github.com/niki4/lwm2m-server/coap"
	"github.com/niki4/lwm2m-server/directory"
	"github.com/niki4/lwm2m-server/lifecycle"
)

// onMonitor is the single monitoring callback registered with the engine,
// grounded on original_source's monitorCb. It never mutates
// observer-visible state directly: it updates the directory and grace
// list, then pushes a Lifecycle Event for the next runOnce to drain, so
// observers never run on the engine's own callback stack.
//
// Invoked with s.mu already held: the engine enters callbacks from within
// Step/HandlePacket, both of which runOnce already holds the lock across.
func (s *Server) onMonitor(client coap.ClientID, name string, status coap.Status, lifetime time.Duration) {
	switch status {
	case coap.StatusCreated:
		s.onRegistered(client, name, lifetime)
	case coap.StatusDeleted:
		s.onDeregistered(client, name)
	case coap.StatusChanged:
		s.onUpdated(client, name, lifetime)
	}
}

// onRegistered handles a new client registration, including the
// replace-with-grace case: if a Device with this name already exists, it
// is moved to the grace list with an immediate Deregistered event before
// the fresh entry is inserted.
func (s *Server) onRegistered(client coap.ClientID, name string, lifetime time.Duration) {
	now := time.Now()
	dev := &directory.Device{
		Name:       name,
		InternalID: uint16(client),
		Lifetime:   lifetime,
		EndOfLife:  now.Add(lifetime),
	}

	previous, replaced := s.dir.Put(dev)
	if replaced {
		s.queue.Push(lifecycle.NewEvent(previous.Name, lifecycle.Deregistered))
		s.grace.Add(previous, previous.Lifetime, now, int(s.cfg.GraceMultiplier))
	}

	s.queue.Push(lifecycle.NewEvent(dev.Name, lifecycle.Registered))
}

// onDeregistered handles an explicit client deregistration.
func (s *Server) onDeregistered(client coap.ClientID, name string) {
	dev, ok := s.dir.GetByInternalID(uint16(client))
	if !ok {
		return
	}

	s.dir.Remove(dev.Name)
	s.queue.Push(lifecycle.NewEvent(dev.Name, lifecycle.Deregistered))
	s.grace.Add(dev, dev.Lifetime, time.Now(), int(s.cfg.GraceMultiplier))
}

// onUpdated handles a registration-update callback, implementing Open
// Question (a): refresh the Device's end-of-life deadline and emit an
// Updated lifecycle event, where original_source left this branch as TODO.
func (s *Server) onUpdated(client coap.ClientID, name string, lifetime time.Duration) {
	dev, ok := s.dir.GetByInternalID(uint16(client))
	if !ok {
		return
	}

	dev.Lifetime = lifetime
	dev.EndOfLife = time.Now().Add(lifetime)
	s.queue.Push(lifecycle.NewEvent(dev.Name, lifecycle.Updated))
}
