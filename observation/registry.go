package observation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niki4/lwm2m-server/coap"
	"github.com/niki4/lwm2m-server/directory"
	"github.com/niki4/lwm2m-server/lwlog"
	"github.com/niki4/lwm2m-server/transaction"
)

// Registry holds the two Observation Entry maps, one keyed by Resource and
// one by Object, guarded by the caller's lock (the server's, in
// production; a plain mutex in tests) rather than one of its own, matching
// how the Transaction Table is owned.
type Registry struct {
	byResource map[*directory.Resource]*Entry
	byObject   map[*directory.Object]*Entry

	log lwlog.Logger
}

// New creates an empty Registry. Delivered notifications are discarded by
// the log until SetLogger installs a real one.
func New() *Registry {
	return &Registry{
		byResource: make(map[*directory.Resource]*Entry),
		byObject:   make(map[*directory.Object]*Entry),
		log:        lwlog.NoopLogger{},
	}
}

// SetLogger installs the Logger notification delivery is recorded to.
func (r *Registry) SetLogger(log lwlog.Logger) {
	if log == nil {
		log = lwlog.NoopLogger{}
	}
	r.log = log
}

// HasResourceEntry reports whether res currently has an Observation Entry.
func (r *Registry) HasResourceEntry(res *directory.Resource) bool {
	_, ok := r.byResource[res]
	return ok
}

// HasObjectEntry reports whether obj currently has an Observation Entry.
func (r *Registry) HasObjectEntry(obj *directory.Object) bool {
	_, ok := r.byObject[obj]
	return ok
}

// ResourceEntry returns the entry for res, if any.
func (r *Registry) ResourceEntry(res *directory.Resource) (*Entry, bool) {
	e, ok := r.byResource[res]
	return e, ok
}

// ObjectEntry returns the entry for obj, if any.
func (r *Registry) ObjectEntry(obj *directory.Object) (*Entry, bool) {
	e, ok := r.byObject[obj]
	return e, ok
}

// ObserveResource starts or cancels an Observe on a single Resource,
// blocking until the submission's result arrives (or the spinner's
// deadline elapses). start=true allocates (or reuses) an Entry; start=
// false issues Cancel-Observe and, only on success, removes the Entry --
// a failed cancel leaves the Entry in place, and a subsequent retry is a
// permitted, idempotent no-op on the registry side (Design Notes (d)).
func (r *Registry) ObserveResource(res *directory.Resource, start bool, client coap.ClientID, engine coap.Engine, sp *transaction.Spinner) error {
	uri := coap.URI{ObjectID: res.Object.ObjectID, InstanceID: res.Object.InstanceID, ResourceID: &res.ResourceID}

	entry, existed := r.byResource[res]
	if !existed {
		if !start {
			// Nothing to cancel; idempotent no-op.
			return nil
		}
		entry = newPendingEntry()
		r.byResource[res] = entry
	} else {
		entry.Status = StatusPending
	}

	submit := engine.Observe
	if !start {
		submit = engine.ObserveCancel
	}

	// The library delivers every subsequent notification through this same
	// callback, exactly as original_source registers notifyResCb once with
	// lwm2m_observe and never again -- so once the initial ack has landed,
	// later invocations are async notifications, not completions.
	if err := submit(client, uri, func(c coap.ClientID, u coap.URI, status coap.Status, format coap.Format, data []byte, _ any) {
		if entry.Pending() {
			entry.Status = status
			return
		}
		if status != coap.StatusContent {
			return
		}
		_ = r.NotifyResource(res, u, format, data, engine)
	}, nil); err != nil {
		if !existed {
			delete(r.byResource, res)
		}
		return fmt.Errorf("observation: submit resource observe: %w", err)
	}

	if err := sp.Wait(func() bool { return !entry.Pending() }, transaction.DefaultDeadline); err != nil {
		return err
	}

	if start {
		if entry.Status != coap.StatusContent {
			delete(r.byResource, res)
			return fmt.Errorf("observation: resource observe failed with status %v", entry.Status)
		}
		return nil
	}

	if entry.Status == coap.StatusDeleted {
		delete(r.byResource, res)
		return nil
	}
	return fmt.Errorf("observation: resource cancel-observe failed with status %v", entry.Status)
}

// ObserveObject starts or cancels an Observe on an Object Instance,
// mirroring ObserveResource.
func (r *Registry) ObserveObject(obj *directory.Object, start bool, client coap.ClientID, engine coap.Engine, sp *transaction.Spinner) error {
	uri := coap.ObjectURI(obj.ObjectID, obj.InstanceID)

	entry, existed := r.byObject[obj]
	if !existed {
		if !start {
			return nil
		}
		entry = newPendingEntry()
		r.byObject[obj] = entry
	} else {
		entry.Status = StatusPending
	}

	submit := engine.Observe
	if !start {
		submit = engine.ObserveCancel
	}

	if err := submit(client, uri, func(c coap.ClientID, u coap.URI, status coap.Status, format coap.Format, data []byte, _ any) {
		if entry.Pending() {
			entry.Status = status
			return
		}
		if status != coap.StatusContent {
			return
		}
		_ = r.NotifyObject(obj, u, format, data, engine)
	}, nil); err != nil {
		if !existed {
			delete(r.byObject, obj)
		}
		return fmt.Errorf("observation: submit object observe: %w", err)
	}

	if err := sp.Wait(func() bool { return !entry.Pending() }, transaction.DefaultDeadline); err != nil {
		return err
	}

	if start {
		if entry.Status != coap.StatusContent {
			delete(r.byObject, obj)
			return fmt.Errorf("observation: object observe failed with status %v", entry.Status)
		}
		return nil
	}

	if entry.Status == coap.StatusDeleted {
		delete(r.byObject, obj)
		return nil
	}
	return fmt.Errorf("observation: object cancel-observe failed with status %v", entry.Status)
}

// NotifyResource delivers an unsolicited notification addressed at a
// single Resource. If res has no active Entry (stale/unknown observation,
// e.g. a late callback after deregistration), the notification is
// silently dropped.
func (r *Registry) NotifyResource(res *directory.Resource, uri coap.URI, format coap.Format, data []byte, engine coap.Engine) error {
	entry, ok := r.byResource[res]
	if !ok {
		return nil
	}

	values, err := engine.DataParse(uri, data, format)
	if err != nil || len(values) == 0 {
		return nil
	}

	entry.Data = values[0].Data
	entry.DataLen = len(values[0].Data)
	res.Notify(values[0].Data)

	resourceID := res.ResourceID
	r.log.Log(lwlog.Event{
		Timestamp:  time.Now(),
		ConnID:     uuid.NewString(),
		Direction:  lwlog.DirectionIn,
		Category:   lwlog.CategoryNotify,
		DeviceName: res.Object.Device.Name,
		Notify: &lwlog.NotifyEventData{
			Scope:      "resource",
			ObjectID:   res.Object.ObjectID,
			InstanceID: res.Object.InstanceID,
			ResourceID: &resourceID,
			DataLen:    entry.DataLen,
		},
	})
	return nil
}

// NotifyObject delivers an unsolicited notification addressed at an
// Object Instance, fanning out to each Resource the payload covers that
// the Object currently exposes. Unknown Resource IDs in the payload are
// ignored; Resources the Object exposes but the payload omits receive no
// call.
func (r *Registry) NotifyObject(obj *directory.Object, uri coap.URI, format coap.Format, data []byte, engine coap.Engine) error {
	entry, ok := r.byObject[obj]
	if !ok {
		return nil
	}

	values, err := engine.DataParse(uri, data, format)
	if err != nil {
		return nil
	}

	entry.DataLen = len(values)

	for _, v := range values {
		for _, res := range obj.Resources {
			if res.ResourceID == v.ResourceID {
				res.Notify(v.Data)
				break
			}
		}
	}

	r.log.Log(lwlog.Event{
		Timestamp:  time.Now(),
		ConnID:     uuid.NewString(),
		Direction:  lwlog.DirectionIn,
		Category:   lwlog.CategoryNotify,
		DeviceName: obj.Device.Name,
		Notify: &lwlog.NotifyEventData{
			Scope:      "object",
			ObjectID:   obj.ObjectID,
			InstanceID: obj.InstanceID,
			DataLen:    entry.DataLen,
		},
	})
	return nil
}

// PurgeDevice removes every Entry whose Resource/Object belongs to dev,
// called when dev is finally evicted from the grace list.
func (r *Registry) PurgeDevice(dev *directory.Device) {
	for _, obj := range dev.Objects {
		delete(r.byObject, obj)
		for _, res := range obj.Resources {
			delete(r.byResource, res)
		}
	}
}
