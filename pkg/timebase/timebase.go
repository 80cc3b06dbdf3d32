// Package timebase turns a free-running hardware timer interrupt into a
// millisecond counter.
//
// Every interrupt adds a fixed number of clock cycles to an accumulator. Whole
// milliseconds are moved out of the accumulator and the remainder is carried
// into the next interrupt, so the long-run rate matches the hardware clock
// exactly and the per-interrupt truncation error never accumulates.
package timebase

import "sync/atomic"

// Config describes the hardware timer feeding the time base.
type Config struct {
	CyclesPerTick uint32 `yaml:"cycles_per_tick"` // CPU cycles between two timer interrupts
	CyclesPerMs   uint32 `yaml:"cycles_per_ms"`   // CPU cycles in one millisecond (F_CPU / 1000)
}

// DefaultConfig returns the timing of an 8 MHz AVR whose 8-bit Timer2 overflows
// with a /1024 prescaler (one interrupt every 32.768 ms).
func DefaultConfig() Config {
	return Config{
		CyclesPerTick: 1024 * 256,
		CyclesPerMs:   8_000_000 / 1000,
	}
}

// TickMillis returns the nominal interrupt period in milliseconds (fractional
// part dropped).
func (c Config) TickMillis() uint32 {
	if c.CyclesPerMs == 0 {
		return 0
	}
	return c.CyclesPerTick / c.CyclesPerMs
}

// TimeBase accumulates timer interrupts into milliseconds.
//
// Tick must only be called from the timer interrupt. Millis and Seconds may be
// called from any context.
type TimeBase struct {
	cyclesPerTick uint32
	cyclesPerMs   uint32

	cycles uint32 // sub-millisecond remainder, owned by the interrupt
	millis atomic.Uint32
}

// New creates a time base starting at zero milliseconds.
func New(cfg Config) *TimeBase {
	if cfg.CyclesPerMs == 0 {
		cfg.CyclesPerMs = 1
	}
	return &TimeBase{
		cyclesPerTick: cfg.CyclesPerTick,
		cyclesPerMs:   cfg.CyclesPerMs,
	}
}

// Tick accounts for one timer interrupt.
func (t *TimeBase) Tick() {
	t.cycles += t.cyclesPerTick
	ms := t.cycles / t.cyclesPerMs
	t.cycles -= ms * t.cyclesPerMs
	t.millis.Add(ms)
}

// Millis returns the milliseconds elapsed since start. The counter wraps after
// about 49.7 days.
func (t *TimeBase) Millis() uint32 {
	return t.millis.Load()
}

// Seconds returns the whole seconds elapsed since start.
func (t *TimeBase) Seconds() uint32 {
	return t.Millis() / 1000
}

// Remainder returns the cycles carried into the next interrupt.
func (t *TimeBase) Remainder() uint32 {
	return t.cycles
}
