// Package pulse holds the detector counters shared between the pulse
// interrupt and the main loop.
//
// The interrupt is the only producer. The main loop only reaches the counters
// through atomic accessors, so a pulse landing between a read and a reset is
// never lost and a multi-byte counter is never observed half-updated.
package pulse

import "sync/atomic"

// Counters is the shared state written by the detector interrupt.
type Counters struct {
	total  atomic.Uint32
	second atomic.Uint32
	beep   atomic.Bool
}

// Edge handles one detector pin change. The detector output is active-low,
// so only a low level counts as a pulse.
func (c *Counters) Edge(level bool) bool {
	if level {
		return false
	}
	c.total.Add(1)
	c.second.Add(1)
	c.beep.Store(true)
	return true
}

// TakeSecond returns the pulses counted since the previous call and restarts
// the count in the same atomic operation.
func (c *Counters) TakeSecond() uint32 {
	return c.second.Swap(0)
}

// Pending returns the pulses counted in the current, unfinished second.
func (c *Counters) Pending() uint32 {
	return c.second.Load()
}

// Total returns the lifetime pulse count.
func (c *Counters) Total() uint32 {
	return c.total.Load()
}

// TakeBeep reports whether a pulse arrived since the previous call and clears
// the flag.
func (c *Counters) TakeBeep() bool {
	return c.beep.Swap(false)
}
