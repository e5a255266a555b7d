package lwlog

import "time"

// Event represents a single protocol-level occurrence in the server core:
// a registration-lifecycle transition, a DM transaction result, a delivered
// notification, or a dropped/integrity-failed callback.
//
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnID is a correlation ID (a UUID). The server sets a fresh one on
	// each DM transaction and each delivered notification it logs; its
	// lifecycle and error events carry none.
	ConnID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow, where applicable.
	Direction Direction `cbor:"3,keyasint,omitempty"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// DeviceName identifies the device the event concerns (bounded copy,
	// may refer to a device no longer in the directory).
	DeviceName string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (exactly one is set, matching Category).
	Lifecycle   *LifecycleEventData   `cbor:"6,keyasint,omitempty"`
	Transaction *TransactionEventData `cbor:"7,keyasint,omitempty"`
	Notify      *NotifyEventData      `cbor:"8,keyasint,omitempty"`
	Error       *ErrorEventData       `cbor:"9,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	DirectionNone Direction = 0
	DirectionIn   Direction = 1
	DirectionOut  Direction = 2
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "NONE"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle is a Registered/Deregistered/Updated/GraceEvicted transition.
	CategoryLifecycle Category = 0
	// CategoryTransaction is a Read/Write DM result.
	CategoryTransaction Category = 1
	// CategoryNotify is a delivered Resource/Object notification.
	CategoryNotify Category = 2
	// CategoryError is an integrity error or submission failure.
	CategoryError Category = 3
)

func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryTransaction:
		return "TRANSACTION"
	case CategoryNotify:
		return "NOTIFY"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEventData describes a directory/grace-list transition.
type LifecycleEventData struct {
	// Kind names the transition: "registered", "deregistered", "updated",
	// "grace_evicted".
	Kind string `cbor:"1,keyasint"`

	// Lifetime is the advertised lifetime at the time of the transition
	// (zero for deregistration/eviction).
	Lifetime time.Duration `cbor:"2,keyasint,omitempty"`
}

// TransactionEventData describes a completed Read or Write.
type TransactionEventData struct {
	// Op is "read" or "write".
	Op string `cbor:"1,keyasint"`

	ObjectID   uint16 `cbor:"2,keyasint"`
	InstanceID uint8  `cbor:"3,keyasint"`
	ResourceID *uint16 `cbor:"4,keyasint,omitempty"`

	// Status is the terminal CoAP status code of the transaction.
	Status uint8 `cbor:"5,keyasint"`

	// ProcessingTime is submission-to-completion latency.
	ProcessingTime time.Duration `cbor:"6,keyasint,omitempty"`
}

// NotifyEventData describes a delivered notification.
type NotifyEventData struct {
	// Scope is "resource" or "object".
	Scope string `cbor:"1,keyasint"`

	ObjectID   uint16  `cbor:"2,keyasint"`
	InstanceID uint8   `cbor:"3,keyasint"`
	ResourceID *uint16 `cbor:"4,keyasint,omitempty"`

	DataLen int `cbor:"5,keyasint"`
}

// ErrorEventData describes a dropped callback or submission failure.
type ErrorEventData struct {
	// Context describes what was being attempted ("monitor_callback",
	// "dm_submit", "notify_resource", ...).
	Context string `cbor:"1,keyasint"`

	Message string `cbor:"2,keyasint"`
}
