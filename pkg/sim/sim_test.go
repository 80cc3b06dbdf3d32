package sim

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gogeiger/pkg/geiger"
	"github.com/itohio/gogeiger/pkg/lcd"
	"github.com/itohio/gogeiger/pkg/regulator"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.NoiseVolts = 0
	return cfg
}

func TestSupply_FirstOrderLag(t *testing.T) {
	cfg := quietConfig()
	cfg.SupplyGain = 1000
	cfg.SupplyTau = time.Second
	s := NewSupply(cfg, regulator.DefaultConfig(), 800, nil)

	s.Set(400)
	assert.InDelta(t, 50, s.DutyPercent(), 1e-3)

	s.Advance(time.Second)
	assert.InDelta(t, 316.06, s.Volts(), 0.5)

	for i := 0; i < 100; i++ {
		s.Advance(time.Second)
	}
	assert.InDelta(t, 500, s.Volts(), 0.01)

	s.Set(0)
	s.Advance(10 * time.Second)
	assert.InDelta(t, 0, s.Volts(), 0.05)
}

func TestSupply_Sensor(t *testing.T) {
	cfg := quietConfig()
	cfg.SupplyGain = 800
	cfg.SupplyTau = 0
	reg := regulator.DefaultConfig()
	s := NewSupply(cfg, reg, 800, nil)
	r := regulator.New(reg, s, s)

	s.Set(400)
	s.Advance(time.Millisecond)
	require.InDelta(t, 400, s.Volts(), 1e-3)

	raw := s.Get()
	assert.Equal(t, uint16(393), raw)
	assert.InDelta(t, 400, r.Voltage(raw), 1)

	s.gain = 2000
	s.Set(10_000)
	s.Advance(time.Millisecond)
	assert.Equal(t, uint16(1023), s.Get(), "clamped to the ADC full scale")
}

func TestSupply_Noise(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupplyTau = 0
	cfg.SupplyGain = 800
	cfg.NoiseVolts = 5
	s := NewSupply(cfg, regulator.DefaultConfig(), 800, rand.New(rand.NewSource(3)))
	s.Set(400)
	s.Advance(time.Millisecond)

	seen := map[uint16]bool{}
	for i := 0; i < 100; i++ {
		raw := s.Get()
		assert.InDelta(t, 393, raw, 30)
		seen[raw] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestSource_Rate(t *testing.T) {
	src := NewSource(600, rand.New(rand.NewSource(42)))
	dt := 32768 * time.Microsecond

	total := 0
	for elapsed := time.Duration(0); elapsed < 600*time.Second; elapsed += dt {
		total += src.Pulses(dt)
	}
	assert.InDelta(t, 6000, total, 300)
}

func TestSource_Silent(t *testing.T) {
	src := NewSource(0, rand.New(rand.NewSource(1)))
	assert.Zero(t, src.Pulses(time.Hour))

	src.SetCPM(-5)
	assert.Zero(t, src.CPM())
	assert.Zero(t, src.Pulses(time.Hour))

	src.SetCPM(60_000)
	assert.Greater(t, src.Pulses(time.Second), 0)
}

func TestBeeper(t *testing.T) {
	var b Beeper
	b.High()
	b.High()
	assert.True(t, b.IsHigh())
	b.Low()
	assert.False(t, b.IsHigh())
	b.High()
	assert.Equal(t, uint32(2), b.Beeps())
}

func TestSim_Tick(t *testing.T) {
	s := New(quietConfig(), geiger.DefaultConfig())
	assert.Equal(t, 32768*time.Microsecond, s.Tick())
}

func TestSim_SettlesAndCounts(t *testing.T) {
	cfg := quietConfig()
	cfg.SourceCPM = 600
	s := New(cfg, geiger.DefaultConfig())

	s.StepFor(90 * time.Second)
	st := s.Status()

	assert.InDelta(t, 400, st.Voltage, 10)
	assert.InDelta(t, 400, st.TubeVolts, 15)
	assert.InDelta(t, 600, st.CPM, 100)
	assert.Len(t, st.Bins, 60)

	assert.Equal(t, uint64(st.Pulses), st.Detected)
	assert.Greater(t, st.Missed, uint64(0), "events arrive before the tube reaches plateau")
	assert.Greater(t, st.Beeps, uint32(0))
	assert.LessOrEqual(t, uint64(st.Beeps), st.Detected)

	assert.Zero(t, st.Diagnostics.LateTasks)
	assert.Zero(t, st.Diagnostics.OutOfRange)
	assert.Zero(t, st.Diagnostics.DisplayErrors)

	for _, line := range st.Lines {
		assert.Len(t, line, 16)
	}
	assert.True(t, strings.HasSuffix(st.Lines[1], "uSv/h"), st.Lines[1])
}

func TestSim_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceCPM = 300

	a := New(cfg, geiger.DefaultConfig())
	b := New(cfg, geiger.DefaultConfig())
	a.StepFor(10 * time.Second)
	b.StepFor(10 * time.Second)

	assert.Equal(t, a.Status(), b.Status())
}

func TestSim_OnUpdate(t *testing.T) {
	s := New(quietConfig(), geiger.DefaultConfig())

	var got []Status
	s.OnUpdate(func(st Status) {
		got = append(got, st)
	})
	s.StepFor(time.Second)

	require.Len(t, got, 6)
	assert.Equal(t, s.Status(), got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Elapsed, got[i-1].Elapsed)
	}
}

func TestSim_SetSourceCPM(t *testing.T) {
	cfg := quietConfig()
	cfg.SourceCPM = 600
	s := New(cfg, geiger.DefaultConfig())
	s.StepFor(10 * time.Second)

	s.SetSourceCPM(0)
	before := s.Status().Detected
	s.StepFor(10 * time.Second)

	st := s.Status()
	assert.Equal(t, before, st.Detected)
	assert.Zero(t, st.SourceCPM)
}

func TestSim_ExtraDisplay(t *testing.T) {
	extra := lcd.NewMemory()
	s := New(quietConfig(), geiger.DefaultConfig(), extra)

	s.StepFor(time.Second)
	assert.Equal(t, s.lcd.Lines(), extra.Lines())
	assert.NotEqual(t, uint64(0), extra.Generation())
}

func TestSim_Run(t *testing.T) {
	cfg := quietConfig()
	cfg.Speed = 20
	s := New(cfg, geiger.DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	updates := make(chan Status, 1000)
	s.OnUpdate(func(st Status) {
		select {
		case updates <- st:
		default:
		}
	})

	require.NoError(t, s.Run(ctx))
	assert.Greater(t, s.Elapsed(), time.Second)
	assert.NotEmpty(t, updates)
}
