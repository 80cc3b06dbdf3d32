package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/itohio/gogeiger/pkg/config"
	"github.com/itohio/gogeiger/pkg/geiger"
	"github.com/itohio/gogeiger/pkg/sim"
)

func TestArgs_Apply(t *testing.T) {
	cfg := config.Default()
	cpm, speed := float32(120), float32(10)
	argSpec{LCDPort: "/dev/ttyUSB0", SourceCPM: &cpm, Speed: &speed, LogLevel: "debug"}.apply(cfg)

	assert.Equal(t, "/dev/ttyUSB0", cfg.LCD.Port)
	assert.Equal(t, float32(120), cfg.Sim.SourceCPM)
	assert.Equal(t, float32(10), cfg.Sim.Speed)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestArgs_ApplyNothing(t *testing.T) {
	cfg := config.Default()
	argSpec{}.apply(cfg)
	assert.Equal(t, config.Default(), cfg)

	negative, zero := float32(-5), float32(0)
	argSpec{SourceCPM: &negative, Speed: &zero}.apply(cfg)
	assert.Equal(t, float32(0), cfg.Sim.SourceCPM)
	assert.Equal(t, float32(1), cfg.Sim.Speed)
}

func TestCustomFormatter(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{"cpm": 30, "b": "x"})
	entry.Level = logrus.WarnLevel
	entry.Message = "hello"

	out, err := new(customFormatter).Format(entry)
	assert.NoError(t, err)
	assert.Equal(t, "[WARNING] hello b=x cpm=30\n", string(out))
}

func TestSlider(t *testing.T) {
	assert.Equal(t, float32(0), sliderToCPM(0))
	assert.Equal(t, float32(99), sliderToCPM(2))
	assert.InDelta(t, 2, cpmToSlider(99), 1e-5)
	assert.Equal(t, float32(0), cpmToSlider(-3))
	assert.Equal(t, float32(sliderDecades), cpmToSlider(1e9))
}

func TestDoseText(t *testing.T) {
	assert.Equal(t, "0.18uSv/h", doseText(18, false))
	assert.Equal(t, "12.05mSv/h", doseText(1205, true))
}

func TestSecondLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(new(customFormatter))

	cb := secondLogger(l)
	cb(sim.Status{Status: geiger.Status{Seconds: 0}})
	assert.Empty(t, buf.String())

	st := sim.Status{Status: geiger.Status{Seconds: 1, CPM: 60}, Elapsed: time.Second}
	st.Lines[0] = "1  400V 3% 60cpm"
	cb(st)
	cb(st)
	assert.Equal(t, "[INFO] 1  400V 3% 60cpm cpm=60 dose=0.37uSv/h duty=0 t=1 tube=0 volts=0\n", buf.String())
}
