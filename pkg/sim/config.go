package sim

import "time"

// Config describes the simulated hardware around the appliance core.
type Config struct {
	SourceCPM    float32       `yaml:"source_cpm"`    // mean rate of the radiation source
	PlateauVolts float32       `yaml:"plateau_volts"` // tube only counts above this voltage
	SupplyGain   float32       `yaml:"supply_gain"`   // open-loop volts at 100% duty
	SupplyTau    time.Duration `yaml:"supply_tau"`    // time constant of the HV capacitor
	NoiseVolts   float32       `yaml:"noise_volts"`   // standard deviation of the sensed voltage
	Speed        float32       `yaml:"speed"`         // simulated seconds per wall clock second
	Seed         int64         `yaml:"seed"`
	UpdateRate   time.Duration `yaml:"update_rate"` // status publishing period, simulated time
}

// DefaultConfig returns a background-level source and a supply that settles
// in a few seconds.
func DefaultConfig() Config {
	return Config{
		SourceCPM:    30,
		PlateauVolts: 350,
		SupplyGain:   1600,
		SupplyTau:    500 * time.Millisecond,
		NoiseVolts:   1.5,
		Speed:        1,
		Seed:         1,
		UpdateRate:   200 * time.Millisecond,
	}
}

func (c *Config) ensureDefaults() {
	def := DefaultConfig()
	if c.SupplyGain == 0 {
		c.SupplyGain = def.SupplyGain
	}
	if c.SupplyTau == 0 {
		c.SupplyTau = def.SupplyTau
	}
	if c.Speed <= 0 {
		c.Speed = def.Speed
	}
	if c.UpdateRate == 0 {
		c.UpdateRate = def.UpdateRate
	}
	if c.SourceCPM < 0 {
		c.SourceCPM = 0
	}
}
