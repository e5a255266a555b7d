package server

import (
	"github.com/niki4/lwm2m-server/coap"
	"github.com/niki4/lwm2m-server/directory"
)

// Observe starts a blocking Observe against res, delegating to the
// Observation Registry. On success, res's registered observers begin
// receiving notifications as the engine delivers them.
func (s *Server) Observe(res *directory.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, _, err := s.resourceTarget(res)
	if err != nil {
		return err
	}
	return s.obs.ObserveResource(res, true, client, s.engine, s.spin)
}

// ObserveCancel stops an active Observe on res.
func (s *Server) ObserveCancel(res *directory.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, _, err := s.resourceTarget(res)
	if err != nil {
		return err
	}
	return s.obs.ObserveResource(res, false, client, s.engine, s.spin)
}

// ObserveObject starts a blocking Object-scoped Observe against obj; each
// later notification fans out to the Resources obj currently exposes, by
// Resource ID match.
func (s *Server) ObserveObject(obj *directory.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.objectTarget(obj)
	if err != nil {
		return err
	}
	return s.obs.ObserveObject(obj, true, client, s.engine, s.spin)
}

// ObserveObjectCancel stops an active Object-scoped Observe.
func (s *Server) ObserveObjectCancel(obj *directory.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.objectTarget(obj)
	if err != nil {
		return err
	}
	return s.obs.ObserveObject(obj, false, client, s.engine, s.spin)
}

// objectTarget mirrors resourceTarget: it re-resolves the current
// directory entry for obj.Device.Name rather than trusting obj's own
// back-reference, rejecting a stale handle left over from a
// replace-with-grace re-registration instead of addressing the dead
// registration's InternalID.
func (s *Server) objectTarget(obj *directory.Object) (coap.ClientID, error) {
	if obj == nil || obj.Device == nil {
		return 0, ErrNoSuchResource
	}
	cur, ok := s.dir.Get(obj.Device.Name)
	if !ok || cur != obj.Device {
		return 0, ErrDeviceNotFound
	}
	return coap.ClientID(cur.InternalID), nil
}
