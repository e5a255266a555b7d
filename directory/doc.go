// Package directory holds the in-memory inventory of registered LWM2M
// clients and their Object/Instance/Resource trees.
//
// A Device owns its Objects exclusively; an Object owns its Resources
// exclusively. Back-references (Object.Device, Resource.Object) are
// non-owning: Go has no dangling-pointer undefined behavior, but a stale
// back-reference from a late callback is still a bug class, so every
// consumer of a back-reference is expected to confirm the Device is still
// in the Directory (or the grace list) before trusting it, per the
// lookup-miss-not-UB design in the original.
package directory
