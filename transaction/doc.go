// Package transaction implements the Transaction Table: there is no
// separate table data structure, only a slot shape (Slot) and two calling
// conventions built around it. Blocking
// callers allocate a Slot locally and spin the server loop (or sleep, in
// threaded mode) until it leaves its sentinel status; non-blocking callers
// keep the Slot alive themselves and are notified later through the
// engine's result callback.
package transaction
