package directory

import "time"

// Capabilities is a bitmask of the operations a Resource permits, carried
// over from the original's LWM2MResource constructor flags (rd/wr/ex) that
// the distilled spec never surfaced but original_source/LWM2MResource.h
// models explicitly.
type Capabilities uint8

const (
	CanRead Capabilities = 1 << iota
	CanWrite
	CanExecute
)

// Has reports whether c includes all bits of want.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

// Device is a registered LWM2M client.
type Device struct {
	// Name is the stable, case-sensitive primary key (the client's
	// advertised endpoint name).
	Name string

	// InternalID is the engine's ephemeral per-registration identifier,
	// reassigned on every re-registration.
	InternalID uint16

	// Lifetime is the registration lifetime as advertised at
	// registration or the most recent update.
	Lifetime time.Duration

	// EndOfLife is the wall-clock deadline by which the client must
	// re-register or be considered stale.
	EndOfLife time.Time

	// Objects are owned exclusively by this Device.
	Objects []*Object
}

// Object returns the Object with the given (ObjectID, InstanceID), if
// present.
func (d *Device) Object(objectID uint16, instanceID uint8) (*Object, bool) {
	for _, o := range d.Objects {
		if o.ObjectID == objectID && o.InstanceID == instanceID {
			return o, true
		}
	}
	return nil, false
}

// AddObject appends obj to this Device's owned Objects and sets its
// back-reference.
func (d *Device) AddObject(obj *Object) {
	obj.Device = d
	d.Objects = append(d.Objects, obj)
}

// Object is an Object/Instance pair within a Device.
type Object struct {
	ObjectID   uint16
	InstanceID uint8

	// Resources are owned exclusively by this Object.
	Resources []*Resource

	// Device is a non-owning back-reference to the parent Device.
	Device *Device
}

// Resource looks up a child Resource by ID.
func (o *Object) Resource(resourceID uint16) (*Resource, bool) {
	for _, r := range o.Resources {
		if r.ResourceID == resourceID {
			return r, true
		}
	}
	return nil, false
}

// AddResource appends res to this Object's owned Resources and sets its
// back-reference.
func (o *Object) AddResource(res *Resource) {
	res.Object = o
	o.Resources = append(o.Resources, res)
}

// ResourceObserver receives notifications for a single Resource.
type ResourceObserver interface {
	OnNotify(data []byte)
}

// ResourceObserverFunc adapts a function to ResourceObserver.
type ResourceObserverFunc func(data []byte)

func (f ResourceObserverFunc) OnNotify(data []byte) { f(data) }

// observerEntry pairs an observer with a stable handle, so DeregisterObserver
// never needs to compare ResourceObserver values directly -- a
// ResourceObserverFunc is a func type and func values are only comparable to
// nil, so equality-based removal would panic at runtime.
type observerEntry struct {
	handle int
	obs    ResourceObserver
}

// Resource is a leaf within an Object.
type Resource struct {
	ResourceID   uint16
	Capabilities Capabilities

	// Object is a non-owning back-reference to the parent Object.
	Object *Object

	observers  []observerEntry
	nextHandle int
}

// RegisterObserver adds an observer to this Resource's notification list
// and returns a handle for later removal via DeregisterObserver.
func (r *Resource) RegisterObserver(obs ResourceObserver) int {
	r.nextHandle++
	handle := r.nextHandle
	r.observers = append(r.observers, observerEntry{handle: handle, obs: obs})
	return handle
}

// DeregisterObserver removes the observer registered under handle. It is a
// no-op if handle is not currently registered.
func (r *Resource) DeregisterObserver(handle int) {
	for i, e := range r.observers {
		if e.handle == handle {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// HasObserver reports whether the Resource currently has at least one
// observer. The original's hasObserver returns the vector size as an
// int8_t; this spec treats it as a boolean (Design Notes (c)).
func (r *Resource) HasObserver() bool {
	return len(r.observers) > 0
}

// Notify invokes every registered observer with data, in registration
// order.
func (r *Resource) Notify(data []byte) {
	for _, e := range r.observers {
		e.obs.OnNotify(data)
	}
}
