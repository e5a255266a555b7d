// Package server wires the Client Directory, Lifecycle Queue, Delete Grace
// list, Observation Registry, and Transaction slots together around a
// coap.Engine, implementing the server-loop protocol: one mutex guards
// every public entry point and the engine callbacks, and blocking calls
// release that mutex across their wait rather than starving the loop.
package server
