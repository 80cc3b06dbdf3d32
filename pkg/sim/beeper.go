package sim

import "sync/atomic"

// Beeper records the audible output.
type Beeper struct {
	high  atomic.Bool
	beeps atomic.Uint32
}

// High drives the output high.
func (b *Beeper) High() {
	if !b.high.Swap(true) {
		b.beeps.Add(1)
	}
}

// Low drives the output low.
func (b *Beeper) Low() {
	b.high.Store(false)
}

// IsHigh reports the output level.
func (b *Beeper) IsHigh() bool {
	return b.high.Load()
}

// Beeps returns the number of low to high transitions.
func (b *Beeper) Beeps() uint32 {
	return b.beeps.Load()
}
