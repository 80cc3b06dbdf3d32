// Package sim runs the appliance core against simulated hardware: a boost
// converter, a Poisson radiation source, a beeper and an in-memory LCD.
package sim

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/itohio/gogeiger/pkg/display"
	"github.com/itohio/gogeiger/pkg/geiger"
	"github.com/itohio/gogeiger/pkg/lcd"
)

// PWMTop is the compare register period of the simulated 10 kHz timer.
const PWMTop = 800

// Status is a snapshot of the simulated appliance.
type Status struct {
	geiger.Status
	Diagnostics geiger.Diagnostics
	Bins        []uint32
	Lines       [lcd.Rows]string
	Elapsed     time.Duration // simulated time
	TubeVolts   float32       // true supply output
	SourceCPM   float32
	Detected    uint64 // events the tube converted into pulses
	Missed      uint64 // events lost while the tube was below plateau
	Beeps       uint32
}

// Sim owns an appliance core and its simulated hardware.
type Sim struct {
	cfg  Config
	log  logrus.FieldLogger
	tick time.Duration

	core   *geiger.Geiger
	supply *Supply
	source *Source
	beeper *Beeper
	lcd    *lcd.Memory

	elapsed  atomic.Int64
	detected atomic.Uint64
	missed   atomic.Uint64

	nextUpdate time.Duration // main loop only

	mu     sync.RWMutex
	status Status

	callbacks []func(Status)
	cbMu      sync.RWMutex
}

// New creates a simulator. Extra displays receive the same output as the
// built-in framebuffer.
func New(cfg Config, core geiger.Config, extra ...display.Display) *Sim {
	cfg.ensureDefaults()

	s := &Sim{
		cfg:    cfg,
		log:    logrus.StandardLogger(),
		tick:   tickDuration(core),
		supply: NewSupply(cfg, core.Regulator, PWMTop, rand.New(rand.NewSource(cfg.Seed))),
		source: NewSource(cfg.SourceCPM, rand.New(rand.NewSource(cfg.Seed+1))),
		beeper: &Beeper{},
		lcd:    lcd.NewMemory(),
	}

	var disp display.Display = s.lcd
	if len(extra) > 0 {
		disp = append(lcd.Multi{s.lcd}, extra...)
	}
	s.core = geiger.New(core, geiger.Hardware{
		Sensor:  s.supply,
		PWM:     s.supply,
		Display: disp,
		Beeper:  s.beeper,
	})
	s.publish()
	return s
}

func tickDuration(core geiger.Config) time.Duration {
	tb := core.TimeBase
	if tb.CyclesPerTick == 0 || tb.CyclesPerMs == 0 {
		tb = geiger.DefaultConfig().TimeBase
	}
	return time.Duration(uint64(tb.CyclesPerTick) * uint64(time.Millisecond) / uint64(tb.CyclesPerMs))
}

// SetLogger replaces the logger. Call it before Run.
func (s *Sim) SetLogger(l logrus.FieldLogger) {
	s.log = l
}

// Tick returns the simulated duration of one timer interrupt.
func (s *Sim) Tick() time.Duration {
	return s.tick
}

// SetSourceCPM changes the source activity. Safe to call at any time.
func (s *Sim) SetSourceCPM(cpm float32) {
	s.source.SetCPM(cpm)
	s.log.WithField("cpm", cpm).Debug("Source activity changed")
}

// OnUpdate registers a callback invoked with every published status. It runs
// on the simulator's main loop and must not block.
func (s *Sim) OnUpdate(callback func(Status)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// Status returns the latest published snapshot.
func (s *Sim) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Step advances the simulation by one timer interrupt and runs one pass of
// the main loop. It is deterministic for a given seed and must not be mixed
// with Run.
func (s *Sim) Step() {
	s.interrupt()
	s.core.Poll()
	s.maybePublish()
}

// StepFor calls Step until d of simulated time has elapsed.
func (s *Sim) StepFor(d time.Duration) {
	end := s.Elapsed() + d
	for s.Elapsed() < end {
		s.Step()
	}
}

// Elapsed returns the simulated time.
func (s *Sim) Elapsed() time.Duration {
	return time.Duration(s.elapsed.Load())
}

// interrupt performs the work of the hardware for one timer period: the
// supply charges, source events become detector edges and the timer
// overflows.
func (s *Sim) interrupt() {
	s.supply.Advance(s.tick)

	n := s.source.Pulses(s.tick)
	if n > 0 {
		if s.supply.Volts() < s.cfg.PlateauVolts {
			s.missed.Add(uint64(n))
		} else {
			for i := 0; i < n; i++ {
				s.core.DetectorInterrupt(false)
				s.core.DetectorInterrupt(true)
			}
			s.detected.Add(uint64(n))
		}
	}

	s.elapsed.Add(int64(s.tick))
	s.core.TimerInterrupt()
}

// Run drives the simulation in real time, scaled by Speed, until ctx is done.
// Interrupts are generated on their own goroutine; the core's main loop runs
// on the calling goroutine and idles between interrupts.
func (s *Sim) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.interrupts(ctx, wake)
	}()

	s.log.WithFields(logrus.Fields{
		"tick":  s.tick,
		"speed": s.cfg.Speed,
	}).Info("Simulation started")

	err := s.core.Run(ctx, &idler{sim: s, ctx: ctx, wake: wake})
	cancel()
	<-done

	s.log.WithField("elapsed", s.Elapsed()).Info("Simulation stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (s *Sim) interrupts(ctx context.Context, wake chan<- struct{}) {
	period := time.Duration(float64(s.tick) / float64(s.cfg.Speed))
	if period < time.Millisecond {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	var owed time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			owed += time.Duration(float64(now.Sub(last)) * float64(s.cfg.Speed))
			last = now
			for owed >= s.tick {
				owed -= s.tick
				s.interrupt()
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

// idler parks the main loop until the next interrupt.
type idler struct {
	sim  *Sim
	ctx  context.Context
	wake <-chan struct{}
}

func (i *idler) Wait() {
	i.sim.maybePublish()
	select {
	case <-i.wake:
	case <-i.ctx.Done():
	}
}

func (s *Sim) maybePublish() {
	now := s.Elapsed()
	if now < s.nextUpdate {
		return
	}
	s.nextUpdate += s.cfg.UpdateRate
	if s.nextUpdate <= now {
		s.nextUpdate = now + s.cfg.UpdateRate
	}
	s.publish()
}

// publish snapshots the core. It runs on the main loop, which owns the core.
func (s *Sim) publish() {
	st := Status{
		Status:      s.core.Status(),
		Diagnostics: s.core.Diagnostics(),
		Bins:        s.core.Bins(),
		Lines:       s.lcd.Lines(),
		Elapsed:     s.Elapsed(),
		TubeVolts:   s.supply.Volts(),
		SourceCPM:   s.source.CPM(),
		Detected:    s.detected.Load(),
		Missed:      s.missed.Load(),
		Beeps:       s.beeper.Beeps(),
	}

	s.mu.Lock()
	s.status = st
	s.mu.Unlock()

	s.cbMu.RLock()
	callbacks := make([]func(Status), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(st)
	}
}
