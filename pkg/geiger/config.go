package geiger

import (
	"github.com/itohio/gogeiger/pkg/display"
	"github.com/itohio/gogeiger/pkg/regulator"
	"github.com/itohio/gogeiger/pkg/timebase"
)

// Config aggregates the constants of every core component.
type Config struct {
	TimeBase  timebase.Config  `yaml:"timebase"`
	Regulator regulator.Config `yaml:"regulator"`
	Display   display.Config   `yaml:"display"`
	Tasks     TaskConfig       `yaml:"tasks"`
}

// TaskConfig holds task periods in milliseconds. Beep may be zero, which
// services the audible output on every millisecond.
type TaskConfig struct {
	CPM     uint32 `yaml:"cpm"`
	Display uint32 `yaml:"display"`
	Beep    uint32 `yaml:"beep"`
	Voltage uint32 `yaml:"voltage"`
}

// DefaultConfig returns the appliance defaults.
func DefaultConfig() Config {
	return Config{
		TimeBase:  timebase.DefaultConfig(),
		Regulator: regulator.DefaultConfig(),
		Display:   display.DefaultConfig(),
		Tasks: TaskConfig{
			CPM:     1000,
			Display: 200,
			Beep:    0,
			Voltage: 200,
		},
	}
}

func (c *Config) ensureDefaults() {
	def := DefaultConfig()
	if c.TimeBase.CyclesPerTick == 0 {
		c.TimeBase.CyclesPerTick = def.TimeBase.CyclesPerTick
	}
	if c.TimeBase.CyclesPerMs == 0 {
		c.TimeBase.CyclesPerMs = def.TimeBase.CyclesPerMs
	}
	if c.Regulator.AdcMax == 0 {
		c.Regulator = def.Regulator
	}
	if c.Display.DoseFactor == 0 {
		c.Display.DoseFactor = def.Display.DoseFactor
	}
	if c.Tasks.CPM == 0 {
		c.Tasks.CPM = def.Tasks.CPM
	}
	if c.Tasks.Display == 0 {
		c.Tasks.Display = def.Tasks.Display
	}
	if c.Tasks.Voltage == 0 {
		c.Tasks.Voltage = def.Tasks.Voltage
	}
}
