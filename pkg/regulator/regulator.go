// Package regulator keeps the Geiger tube high voltage inside a band around
// its setpoint with a hysteretic (bang-bang) control law acting on the PWM duty
// cycle of the boost converter.
package regulator

import "github.com/chewxy/math32"

// Sensor returns one raw analog sample of the divided-down tube voltage.
type Sensor interface {
	Get() uint16
}

// PWM is the compare register of the timer driving the boost converter.
// Top is the register period; Set accepts values in [0, Top].
type PWM interface {
	Top() uint32
	Set(value uint32)
}

// Config holds the scale constants and the control law parameters.
type Config struct {
	AdcMax          uint16  `yaml:"adc_max"`           // full scale raw sample
	VRef            float32 `yaml:"vref"`              // ADC reference, volts
	DividerRatio    float32 `yaml:"divider_ratio"`     // tube volts per sensed volt
	FixedPointScale uint32  `yaml:"fixed_point_scale"` // fixed-point factor of the conversion

	TargetVolts int32 `yaml:"target_volts"`
	BandVolts   int32 `yaml:"band_volts"` // dead band half-width

	DutyMax        uint16 `yaml:"duty_max"`        // full scale of the duty domain
	CeilingPercent uint16 `yaml:"ceiling_percent"` // duty is never raised above this
	FloorPercent   uint16 `yaml:"floor_percent"`   // duty is never lowered below this

	ErrorDivisor int32 `yaml:"error_divisor"` // volts of error per step unit
	MinStep      int32 `yaml:"min_step"`
	MaxStep      int32 `yaml:"max_step"`
}

// DefaultConfig returns the values for a 10-bit ADC at 5 V sensing the tube
// through a 200:1 divider, regulated to 400 V ±5 V.
func DefaultConfig() Config {
	return Config{
		AdcMax:          1023,
		VRef:            5.0,
		DividerRatio:    200,
		FixedPointScale: 64,
		TargetVolts:     400,
		BandVolts:       5,
		DutyMax:         65535,
		CeilingPercent:  50,
		FloorPercent:    2,
		ErrorDivisor:    8,
		MinStep:         1,
		MaxStep:         20,
	}
}

// Divisor returns the integer divisor of raw*FixedPointScale that yields volts.
// It is the rounded value of (1/AdcMax) * VRef * DividerRatio * FixedPointScale.
func (c Config) Divisor() uint32 {
	if c.AdcMax == 0 {
		return 1
	}
	d := math32.Round(1 / float32(c.AdcMax) * c.VRef * c.DividerRatio * float32(c.FixedPointScale))
	if d < 1 {
		return 1
	}
	return uint32(d)
}

// StepUnit is the duty change of one step, a thousandth of full scale.
func (c Config) StepUnit() int32 {
	u := int32(c.DutyMax) / 1000
	if u < 1 {
		return 1
	}
	return u
}

// Ceiling is the highest duty the regulator drives to.
func (c Config) Ceiling() int32 {
	return int32(c.DutyMax) / 100 * int32(c.CeilingPercent)
}

// Floor is the lowest duty the regulator drives to.
func (c Config) Floor() int32 {
	return int32(c.DutyMax) / 100 * int32(c.FloorPercent)
}

// Low is the threshold below which duty is increased.
func (c Config) Low() int32 {
	return c.TargetVolts - c.BandVolts
}

// High is the threshold above which duty is decreased.
func (c Config) High() int32 {
	return c.TargetVolts + c.BandVolts
}

// Reading is the outcome of one regulation pass.
type Reading struct {
	Raw     uint16
	Voltage int32
	Duty    uint16
	Compare uint32
}

// Regulator owns the duty cycle. It is driven from the main loop only.
type Regulator struct {
	cfg     Config
	sensor  Sensor
	pwm     PWM
	divisor uint32

	duty       int32
	voltage    int32
	outOfRange uint32
}

// New creates a regulator starting at zero duty.
func New(cfg Config, sensor Sensor, pwm PWM) *Regulator {
	if cfg.ErrorDivisor == 0 {
		cfg.ErrorDivisor = 1
	}
	if cfg.DutyMax == 0 {
		cfg.DutyMax = 1
	}
	return &Regulator{
		cfg:     cfg,
		sensor:  sensor,
		pwm:     pwm,
		divisor: cfg.Divisor(),
	}
}

// Voltage converts a raw sample into tube volts. Out-of-range samples are
// converted like any other.
func (r *Regulator) Voltage(raw uint16) int32 {
	return int32(uint32(raw) * r.cfg.FixedPointScale / r.divisor)
}

// Regulate samples the sensor, updates the duty cycle and writes the compare
// register.
func (r *Regulator) Regulate() Reading {
	raw := r.sensor.Get()
	if raw > r.cfg.AdcMax {
		r.outOfRange++
	}
	r.voltage = r.Voltage(raw)
	r.duty = r.next(r.voltage, r.duty)

	cmp := r.Compare(uint16(r.duty))
	r.pwm.Set(cmp)

	return Reading{
		Raw:     raw,
		Voltage: r.voltage,
		Duty:    uint16(r.duty),
		Compare: cmp,
	}
}

// next applies the control law to one measurement.
func (r *Regulator) next(voltage, duty int32) int32 {
	diff := r.cfg.TargetVolts - voltage
	ceiling, floor := r.cfg.Ceiling(), r.cfg.Floor()

	switch {
	case voltage < r.cfg.Low() && duty < ceiling:
		duty += r.step(diff)
		if duty > ceiling {
			duty = ceiling
		}
	case voltage > r.cfg.High() && duty > floor:
		duty -= r.step(-diff)
		if duty < floor {
			duty = floor
		}
	}
	return duty
}

func (r *Regulator) step(err int32) int32 {
	return r.cfg.StepUnit() * clamp(err/r.cfg.ErrorDivisor, r.cfg.MinStep, r.cfg.MaxStep)
}

// Compare scales a duty value into the PWM compare register range.
func (r *Regulator) Compare(duty uint16) uint32 {
	return uint32(uint64(duty) * uint64(r.pwm.Top()) / uint64(r.cfg.DutyMax))
}

// Duty returns the current duty cycle in the regulator's duty domain.
func (r *Regulator) Duty() uint16 {
	return uint16(r.duty)
}

// DutyPercent returns the duty cycle in whole percent.
func (r *Regulator) DutyPercent() uint32 {
	unit := uint32(r.cfg.DutyMax) / 100
	if unit == 0 {
		return 0
	}
	return uint32(r.duty) / unit
}

// LastVoltage returns the voltage measured by the latest pass.
func (r *Regulator) LastVoltage() int32 {
	return r.voltage
}

// OutOfRange returns how many samples exceeded the ADC full scale. These
// samples are still used for control.
func (r *Regulator) OutOfRange() uint32 {
	return r.outOfRange
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
