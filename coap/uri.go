package coap

import "fmt"

// URI addresses an Object, Object Instance, or Resource on a registered
// client, mirroring the LWM2M /ObjectID/InstanceID/ResourceID path.
// ResourceID is nil for an Object-scoped operation (e.g. Object-level
// Observe).
type URI struct {
	ObjectID   uint16
	InstanceID uint8
	ResourceID *uint16
}

// ResourceURI builds a fully-qualified Resource URI.
func ResourceURI(objectID uint16, instanceID uint8, resourceID uint16) URI {
	rid := resourceID
	return URI{ObjectID: objectID, InstanceID: instanceID, ResourceID: &rid}
}

// ObjectURI builds an Object-scoped URI (no Resource component).
func ObjectURI(objectID uint16, instanceID uint8) URI {
	return URI{ObjectID: objectID, InstanceID: instanceID}
}

// IsObject reports whether this URI addresses an Object Instance rather
// than a single Resource.
func (u URI) IsObject() bool {
	return u.ResourceID == nil
}

func (u URI) String() string {
	if u.ResourceID == nil {
		return fmt.Sprintf("/%d/%d", u.ObjectID, u.InstanceID)
	}
	return fmt.Sprintf("/%d/%d/%d", u.ObjectID, u.InstanceID, *u.ResourceID)
}

// Format is a CoAP content-format identifier.
type Format uint16

const (
	// FormatText is text/plain, used for Writes per spec.
	FormatText Format = 0
	// FormatTLV is application/vnd.oma.lwm2m+tlv, the typical engine
	// output format for Reads and notifications.
	FormatTLV Format = 11542
	// FormatOpaque is application/octet-stream.
	FormatOpaque Format = 42
)
