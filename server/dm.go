package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niki4/lwm2m-server/coap"
	"github.com/niki4/lwm2m-server/directory"
	"github.com/niki4/lwm2m-server/lwlog"
	"github.com/niki4/lwm2m-server/transaction"
)

// Read performs a blocking DM Read against res, spinning the Server Loop
// (non-threaded) or sleeping a quantum (threaded) between polls, exactly as
// original_source's read() does. It returns the parsed payload on success.
func (s *Server) Read(res *directory.Resource) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	client, uri, err := s.resourceTarget(res)
	if err != nil {
		return nil, err
	}

	slot := transaction.NewSlot(client, uri)
	if err := s.engine.Read(client, uri, func(_ coap.ClientID, _ coap.URI, status coap.Status, format coap.Format, data []byte, _ any) {
		slot.Complete(status, format, data)
	}, nil); err != nil {
		return nil, fmt.Errorf("server: submit read: %w", err)
	}

	if err := s.spin.Wait(func() bool { return !slot.Pending() }, s.cfg.BlockingDeadline); err != nil {
		return nil, err
	}

	if !slot.Status.Success(false) {
		return nil, fmt.Errorf("server: read failed with status %v", slot.Status)
	}

	values, err := s.engine.DataParse(uri, slot.Data, slot.Format)
	if err != nil || len(values) == 0 {
		return nil, fmt.Errorf("server: read: parse failed: %w", err)
	}
	s.logTransaction("read", res, slot.Status, time.Since(start))
	return values[0].Data, nil
}

// Write performs a blocking DM Write of data (text/plain) against res. A
// Resource lacking CanWrite is rejected before the engine ever sees the
// request -- this mirrors the engine-level rejection the original relies
// on its CoAP library to perform, made explicit here since this module
// also models Capabilities at the application layer.
func (s *Server) Write(res *directory.Resource, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if !res.Capabilities.Has(directory.CanWrite) {
		return ErrReadOnly
	}

	client, uri, err := s.resourceTarget(res)
	if err != nil {
		return err
	}

	slot := transaction.NewSlot(client, uri)
	if err := s.engine.Write(client, uri, coap.FormatText, data, func(_ coap.ClientID, _ coap.URI, status coap.Status, format coap.Format, respData []byte, _ any) {
		slot.Complete(status, format, respData)
	}, nil); err != nil {
		return fmt.Errorf("server: submit write: %w", err)
	}

	if err := s.spin.Wait(func() bool { return !slot.Pending() }, s.cfg.BlockingDeadline); err != nil {
		return err
	}

	if !slot.Status.Success(true) {
		return fmt.Errorf("server: write failed with status %v", slot.Status)
	}
	s.logTransaction("write", res, slot.Status, time.Since(start))
	return nil
}

// logTransaction records a completed Read or Write, tagging it with a
// fresh correlation ID the way pkg/transport/server.go tags each new
// connection, so the structured log can group an operation's events
// without relying on timestamp proximity.
func (s *Server) logTransaction(op string, res *directory.Resource, status coap.Status, elapsed time.Duration) {
	resourceID := res.ResourceID
	s.log.Log(lwlog.Event{
		Timestamp:  time.Now(),
		ConnID:     uuid.NewString(),
		Direction:  lwlog.DirectionOut,
		Category:   lwlog.CategoryTransaction,
		DeviceName: res.Object.Device.Name,
		Transaction: &lwlog.TransactionEventData{
			Op:             op,
			ObjectID:       res.Object.ObjectID,
			InstanceID:     res.Object.InstanceID,
			ResourceID:     &resourceID,
			Status:         uint8(status),
			ProcessingTime: elapsed,
		},
	})
}

// resourceTarget resolves the (ClientID, URI) pair for a DM operation
// against res, failing if res's owning Device is no longer registered
// (e.g. it was replaced or deregistered between the caller obtaining the
// handle and calling Read/Write). The current directory entry for the
// name is re-resolved rather than trusting res's own back-reference, so a
// stale handle surviving a replace-with-grace re-registration (a new
// Device now occupies the name, with a fresh InternalID) is rejected
// instead of silently addressing the dead registration, matching
// original_source's read()/write(), which always re-derive p_cli via
// getDevice(p_dev->getName()) rather than reusing p_dev's own fields.
func (s *Server) resourceTarget(res *directory.Resource) (coap.ClientID, coap.URI, error) {
	if res == nil || res.Object == nil || res.Object.Device == nil {
		return 0, coap.URI{}, ErrNoSuchResource
	}
	dev := res.Object.Device
	cur, ok := s.dir.Get(dev.Name)
	if !ok || cur != dev {
		return 0, coap.URI{}, ErrDeviceNotFound
	}
	return coap.ClientID(cur.InternalID), coap.ResourceURI(res.Object.ObjectID, res.Object.InstanceID, res.ResourceID), nil
}
