package observation

import "github.com/niki4/lwm2m-server/coap"

// Entry is a single-slot mailbox for one Observation: the most recent
// transaction status (success/failure of the Observe or Cancel-Observe
// submission), the last delivered payload, and its parsed length. Unlike
// transaction.Slot, an Entry's lifetime is owned by the Registry, not the
// caller, because a successful Observe persists across many future
// notifications.
type Entry struct {
	Status  coap.Status
	Data    []byte
	DataLen int
}

// newPendingEntry returns an Entry with the not-yet-completed sentinel set
// for a freshly submitted Observe/Cancel-Observe.
func newPendingEntry() *Entry {
	return &Entry{Status: StatusPending, DataLen: -1}
}

// StatusPending is the not-yet-completed sentinel an Entry's Status holds
// between submission and the result callback firing, distinct from
// coap.StatusNone so a never-observed handle and an in-flight one are
// never confused.
const StatusPending coap.Status = 0xFF

// Pending reports whether the Entry is still awaiting its Observe/Cancel-
// Observe result.
func (e *Entry) Pending() bool {
	return e.Status == StatusPending
}
