package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, uint32(262144), cfg.CyclesPerTick)
	assert.Equal(t, uint32(8000), cfg.CyclesPerMs)
	assert.Equal(t, uint32(32), cfg.TickMillis())
}

func TestTick_OneMillisecondPerTick(t *testing.T) {
	tb := New(Config{CyclesPerTick: 8000, CyclesPerMs: 8000})

	for i := 0; i < 1000; i++ {
		tb.Tick()
	}
	assert.Equal(t, uint32(1000), tb.Millis())
	assert.Equal(t, uint32(1), tb.Seconds())

	for i := 0; i < 10_000*1000-1000; i++ {
		tb.Tick()
	}
	assert.Equal(t, uint32(10_000_000), tb.Millis())
	assert.Equal(t, uint32(0), tb.Remainder())
}

func TestTick_CarriesFraction(t *testing.T) {
	tb := New(DefaultConfig())

	// 262144 / 8000 = 32.768 ms per interrupt
	tb.Tick()
	assert.Equal(t, uint32(32), tb.Millis())
	assert.Equal(t, uint32(6144), tb.Remainder())

	tb.Tick()
	assert.Equal(t, uint32(65), tb.Millis())
	assert.Equal(t, uint32(4288), tb.Remainder())

	for i := 2; i < 1000; i++ {
		tb.Tick()
	}
	assert.Equal(t, uint32(32768), tb.Millis())
	assert.Equal(t, uint32(0), tb.Remainder())
}

func TestTick_NoDrift(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "avr timer2", cfg: DefaultConfig()},
		{name: "16MHz 1ms", cfg: Config{CyclesPerTick: 16000, CyclesPerMs: 16000}},
		{name: "odd period", cfg: Config{CyclesPerTick: 12345, CyclesPerMs: 1000}},
		{name: "sub-millisecond tick", cfg: Config{CyclesPerTick: 300, CyclesPerMs: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := New(tt.cfg)
			const ticks = 10_000
			for i := 0; i < ticks; i++ {
				tb.Tick()
			}
			total := uint64(ticks) * uint64(tt.cfg.CyclesPerTick)
			assert.Equal(t, uint32(total/uint64(tt.cfg.CyclesPerMs)), tb.Millis())
			assert.Equal(t, uint32(total%uint64(tt.cfg.CyclesPerMs)), tb.Remainder())
		})
	}
}

func TestNew_ZeroCyclesPerMs(t *testing.T) {
	tb := New(Config{CyclesPerTick: 5})
	tb.Tick()
	assert.Equal(t, uint32(5), tb.Millis())
}
