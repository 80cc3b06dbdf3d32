// Package geiger wires the time base, pulse capture, CPM estimator, voltage
// regulator and display formatter into the appliance control loop.
//
// Two execution contexts touch a Geiger: interrupt handlers call
// TimerInterrupt and DetectorInterrupt, everything else runs from the single
// main loop. Only the time base and the pulse counters are shared between
// them.
package geiger

import (
	"context"

	"github.com/itohio/gogeiger/pkg/bins"
	"github.com/itohio/gogeiger/pkg/display"
	"github.com/itohio/gogeiger/pkg/pulse"
	"github.com/itohio/gogeiger/pkg/regulator"
	"github.com/itohio/gogeiger/pkg/scheduler"
	"github.com/itohio/gogeiger/pkg/timebase"
)

// Beeper drives the audible feedback output.
type Beeper interface {
	High()
	Low()
}

// Hardware groups the collaborators the core drives.
type Hardware struct {
	Sensor  regulator.Sensor
	PWM     regulator.PWM
	Display display.Display
	Beeper  Beeper
}

// Status is a snapshot of the appliance state.
type Status struct {
	Millis      uint32
	Seconds     uint32
	Pulses      uint32
	CPM         uint32
	Voltage     int32
	Duty        uint16
	DutyPercent uint32
	Dose        uint32 // hundredths of Sv/h in the unit selected by Milli
	Milli       bool
	Beeping     bool
}

// Diagnostics counts anomalies. None of them alter control behaviour.
type Diagnostics struct {
	LateTasks     uint32
	OutOfRange    uint32
	DisplayErrors uint32
	Beeps         uint32
}

// Geiger is the appliance core. It is constructed once and never torn down.
type Geiger struct {
	cfg Config
	hw  Hardware

	tb       *timebase.TimeBase
	counters pulse.Counters
	bins     bins.Bins
	cpm      uint32

	reg       *regulator.Regulator
	formatter display.Formatter
	sched     *scheduler.Scheduler

	beeping       bool
	beeps         uint32
	displayErrors uint32
	lastDisplay   error
}

// New creates the core and registers its tasks in the order CPM tick,
// display refresh, audible pulse, voltage regulation.
func New(cfg Config, hw Hardware) *Geiger {
	cfg.ensureDefaults()
	g := &Geiger{
		cfg:       cfg,
		hw:        hw,
		tb:        timebase.New(cfg.TimeBase),
		reg:       regulator.New(cfg.Regulator, hw.Sensor, hw.PWM),
		formatter: display.NewFormatter(cfg.Display),
	}

	g.sched = scheduler.New(g.tb)
	g.sched.Add(scheduler.Task{Name: "cpm", Period: cfg.Tasks.CPM, Rearm: scheduler.FixedRate, Run: g.tickCPM})
	g.sched.Add(scheduler.Task{Name: "display", Period: cfg.Tasks.Display, Rearm: scheduler.FromNow, Run: g.refreshDisplay})
	g.sched.Add(scheduler.Task{Name: "beep", Period: cfg.Tasks.Beep, Rearm: scheduler.FromNow, Run: g.beep})
	g.sched.Add(scheduler.Task{Name: "voltage", Period: cfg.Tasks.Voltage, Rearm: scheduler.FromNow, Run: g.regulate})
	return g
}

// TimerInterrupt advances the time base by one hardware counter overflow.
func (g *Geiger) TimerInterrupt() {
	g.tb.Tick()
}

// DetectorInterrupt records a detector edge; level is the pin state after
// the edge. It reports whether the edge was counted.
func (g *Geiger) DetectorInterrupt(level bool) bool {
	return g.counters.Edge(level)
}

// Poll runs one pass of the main loop and returns the number of tasks run.
func (g *Geiger) Poll() int {
	return g.sched.Poll()
}

// Run is the main loop: poll, then idle until the next interrupt.
func (g *Geiger) Run(ctx context.Context, idler scheduler.Idler) error {
	return g.sched.Run(ctx, idler)
}

// Millis returns the time base value.
func (g *Geiger) Millis() uint32 {
	return g.tb.Millis()
}

// Status returns a snapshot. It must be called from the main loop context.
func (g *Geiger) Status() Status {
	dose, milli := display.Dose(g.cpm, g.cfg.Display.DoseFactor)
	return Status{
		Millis:      g.tb.Millis(),
		Seconds:     g.tb.Seconds(),
		Pulses:      g.counters.Total(),
		CPM:         g.cpm,
		Voltage:     g.reg.LastVoltage(),
		Duty:        g.reg.Duty(),
		DutyPercent: g.reg.DutyPercent(),
		Dose:        dose,
		Milli:       milli,
		Beeping:     g.beeping,
	}
}

// Bins returns the per-second counts, oldest first.
func (g *Geiger) Bins() []uint32 {
	return g.bins.Values()
}

// Diagnostics returns the anomaly counters.
func (g *Geiger) Diagnostics() Diagnostics {
	return Diagnostics{
		LateTasks:     g.sched.Late(),
		OutOfRange:    g.reg.OutOfRange(),
		DisplayErrors: g.displayErrors,
		Beeps:         g.beeps,
	}
}

// LastDisplayError returns the most recent display failure, if any.
func (g *Geiger) LastDisplayError() error {
	return g.lastDisplay
}

func (g *Geiger) tickCPM(uint32) {
	g.bins.Add(g.counters.TakeSecond())
	g.cpm = g.bins.CPM()
}

func (g *Geiger) refreshDisplay(uint32) {
	if g.hw.Display == nil {
		return
	}
	err := g.formatter.Render(g.hw.Display, display.Reading{
		Pulses:      g.counters.Total(),
		CPM:         g.cpm,
		Seconds:     g.tb.Seconds(),
		Voltage:     g.reg.LastVoltage(),
		DutyPercent: g.reg.DutyPercent(),
	})
	if err != nil {
		g.displayErrors++
		g.lastDisplay = err
	}
}

func (g *Geiger) beep(uint32) {
	if g.hw.Beeper == nil {
		g.counters.TakeBeep()
		return
	}
	if g.beeping {
		g.hw.Beeper.Low()
		g.beeping = false
	}
	if g.counters.TakeBeep() {
		g.hw.Beeper.High()
		g.beeping = true
		g.beeps++
	}
}

func (g *Geiger) regulate(uint32) {
	g.reg.Regulate()
}
