// Package observation implements the Observation Registry: two maps,
// Object handle -> Entry and Resource handle -> Entry,
// each Entry acting as a single-slot mailbox for the outstanding Observe/
// Cancel-Observe transaction plus the most recently delivered payload.
// Notification fan-out (match-by-Resource-ID for Object-scoped entries,
// direct delivery for Resource-scoped ones) mirrors original_source's
// notifyResCb/notifyObjCb.
package observation
