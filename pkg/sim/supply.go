package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gogeiger/pkg/regulator"
)

// Supply models the boost converter charging the tube capacitor. The output
// follows gain*duty with a first-order lag. It is both the PWM the regulator
// drives and the sensor it reads.
type Supply struct {
	mu sync.Mutex

	gain  float32
	tau   float32 // seconds
	noise float32
	rng   *rand.Rand

	top     uint32
	compare uint32
	volts   float32

	// sensed = raw * scale / divisor, the regulator's own conversion
	scale   float32
	divisor float32
	adcMax  float32
}

var (
	_ regulator.Sensor = (*Supply)(nil)
	_ regulator.PWM    = (*Supply)(nil)
)

// NewSupply creates a discharged supply with a compare register of period top.
func NewSupply(cfg Config, reg regulator.Config, top uint32, rng *rand.Rand) *Supply {
	if top == 0 {
		top = 1
	}
	return &Supply{
		gain:    cfg.SupplyGain,
		tau:     float32(cfg.SupplyTau.Seconds()),
		noise:   cfg.NoiseVolts,
		rng:     rng,
		top:     top,
		scale:   float32(reg.FixedPointScale),
		divisor: float32(reg.Divisor()),
		adcMax:  float32(reg.AdcMax),
	}
}

// Top returns the compare register period.
func (s *Supply) Top() uint32 {
	return s.top
}

// Set loads the compare register.
func (s *Supply) Set(value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value > s.top {
		value = s.top
	}
	s.compare = value
}

// Get samples the voltage divider.
func (s *Supply) Get() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.volts
	if s.noise > 0 && s.rng != nil {
		v += float32(s.rng.NormFloat64()) * s.noise
	}
	if s.scale == 0 {
		return 0
	}
	raw := math32.Floor(v * s.divisor / s.scale)
	return uint16(math32.Max(0, math32.Min(raw, s.adcMax)))
}

// Advance integrates the output over dt.
func (s *Supply) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.gain * float32(s.compare) / float32(s.top)
	alpha := float32(1)
	if s.tau > 0 {
		alpha = 1 - math32.Exp(-float32(dt.Seconds())/s.tau)
	}
	s.volts += alpha * (target - s.volts)
}

// Volts returns the true output voltage.
func (s *Supply) Volts() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volts
}

// DutyPercent returns the compare register as a percentage of its period.
func (s *Supply) DutyPercent() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 100 * float32(s.compare) / float32(s.top)
}
