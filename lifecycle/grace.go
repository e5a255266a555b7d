package lifecycle

import (
	"time"

	"github.com/niki4/lwm2m-server/directory"
)

// GraceMultiplier is the factor applied to a Device's advertised lifetime
// to compute its grace deadline (now + GraceMultiplier*lifetime). The
// original hardcodes 2; this module exposes it as a configuration knob
// (lwconfig.Config.GraceMultiplier) but keeps 2 as the default.
const GraceMultiplier = 2

// GraceEntry holds a deregistered (or replaced) Device awaiting final
// purge, so that late engine callbacks referencing it still resolve to a
// live Object/Resource tree instead of a dangling lookup.
type GraceEntry struct {
	Device   *directory.Device
	Deadline time.Time
}

// GraceList is kept in insertion order. Because deadlines are monotonic
// per-Device (now + multiplier*lifetime, and devices enter the list in
// time order), Sweep need only walk from the front and stop at the first
// still-live entry, exactly as original_source's checkDeletedDevices walks
// m_devDel.
type GraceList struct {
	entries []GraceEntry
}

// Add appends a GraceEntry with deadline now + multiplier*lifetime.
func (g *GraceList) Add(dev *directory.Device, lifetime time.Duration, now time.Time, multiplier int) {
	g.entries = append(g.entries, GraceEntry{
		Device:   dev,
		Deadline: now.Add(time.Duration(multiplier) * lifetime),
	})
}

// Sweep pops every entry whose deadline has elapsed as of now, in
// insertion order, stopping at the first still-live entry. The caller is
// responsible for purging each returned entry's Observation Entries before
// dropping the Device.
func (g *GraceList) Sweep(now time.Time) []GraceEntry {
	var expired []GraceEntry
	i := 0
	for i < len(g.entries) && !g.entries[i].Deadline.After(now) {
		expired = append(expired, g.entries[i])
		i++
	}
	if i > 0 {
		g.entries = g.entries[i:]
	}
	return expired
}

// Contains reports whether dev is currently sitting in the grace list.
func (g *GraceList) Contains(dev *directory.Device) bool {
	for _, e := range g.entries {
		if e.Device == dev {
			return true
		}
	}
	return false
}

// Len reports the number of entries currently awaiting purge.
func (g *GraceList) Len() int {
	return len(g.entries)
}
