package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/gogeiger/pkg/geiger"
	"github.com/itohio/gogeiger/pkg/sim"
)

// Config represents the simulator configuration.
type Config struct {
	Geiger   geiger.Config `yaml:"geiger"`
	Sim      sim.Config    `yaml:"sim"`
	LCD      LCDConfig     `yaml:"lcd"`
	Trend    TrendConfig   `yaml:"trend"`
	LogLevel string        `yaml:"log_level"`
}

// LCDConfig contains the optional serial LCD backpack configuration.
type LCDConfig struct {
	Port     string `yaml:"port"` // empty disables the bench display
	BaudRate int    `yaml:"baud_rate"`
}

// TrendConfig contains the history chart parameters.
type TrendConfig struct {
	Window    time.Duration `yaml:"window"`     // simulated time kept in the chart
	MaxPoints int           `yaml:"max_points"` // points drawn per trace
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Geiger: geiger.DefaultConfig(),
		Sim:    sim.DefaultConfig(),
		LCD: LCDConfig{
			Port:     "",
			BaudRate: 9600,
		},
		Trend: TrendConfig{
			Window:    5 * time.Minute,
			MaxPoints: 600,
		},
		LogLevel: "info",
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Geiger.TimeBase.CyclesPerTick == 0 {
		c.Geiger.TimeBase.CyclesPerTick = def.Geiger.TimeBase.CyclesPerTick
	}
	if c.Geiger.TimeBase.CyclesPerMs == 0 {
		c.Geiger.TimeBase.CyclesPerMs = def.Geiger.TimeBase.CyclesPerMs
	}
	if c.Geiger.Regulator.AdcMax == 0 {
		c.Geiger.Regulator.AdcMax = def.Geiger.Regulator.AdcMax
	}
	if c.Geiger.Regulator.DutyMax == 0 {
		c.Geiger.Regulator.DutyMax = def.Geiger.Regulator.DutyMax
	}
	if c.Geiger.Regulator.FixedPointScale == 0 {
		c.Geiger.Regulator.FixedPointScale = def.Geiger.Regulator.FixedPointScale
	}
	if c.Geiger.Regulator.ErrorDivisor == 0 {
		c.Geiger.Regulator.ErrorDivisor = def.Geiger.Regulator.ErrorDivisor
	}
	if c.Geiger.Display.DoseFactor == 0 {
		c.Geiger.Display.DoseFactor = def.Geiger.Display.DoseFactor
	}
	if c.Geiger.Tasks.CPM == 0 {
		c.Geiger.Tasks.CPM = def.Geiger.Tasks.CPM
	}
	if c.Geiger.Tasks.Display == 0 {
		c.Geiger.Tasks.Display = def.Geiger.Tasks.Display
	}
	if c.Geiger.Tasks.Voltage == 0 {
		c.Geiger.Tasks.Voltage = def.Geiger.Tasks.Voltage
	}

	if c.Sim.SupplyGain == 0 {
		c.Sim.SupplyGain = def.Sim.SupplyGain
	}
	if c.Sim.SupplyTau == 0 {
		c.Sim.SupplyTau = def.Sim.SupplyTau
	}
	if c.Sim.Speed <= 0 {
		c.Sim.Speed = def.Sim.Speed
	}
	if c.Sim.UpdateRate == 0 {
		c.Sim.UpdateRate = def.Sim.UpdateRate
	}

	if c.LCD.BaudRate == 0 {
		c.LCD.BaudRate = def.LCD.BaudRate
	}

	if c.Trend.Window == 0 {
		c.Trend.Window = def.Trend.Window
	}
	if c.Trend.MaxPoints == 0 {
		c.Trend.MaxPoints = def.Trend.MaxPoints
	}

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}
