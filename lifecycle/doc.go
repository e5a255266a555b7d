// Package lifecycle holds the registration-lifecycle event queue and the
// delete-grace list: the monitoring callback never touches observer-visible
// state directly, it only pushes here, and the server loop drains both at
// the top of every iteration. This keeps lifecycle transitions off the
// protocol engine's callback stack and delivered to observers in arrival
// order.
package lifecycle
