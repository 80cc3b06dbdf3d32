//go:build tinygo && avr

//go:generate tinygo flash -target=arduino

package main

import (
	"context"
	"device/avr"
	"errors"
	"machine"
	"runtime/interrupt"
	"time"

	"tinygo.org/x/drivers/hd44780"

	"github.com/itohio/gogeiger/pkg/display"
	"github.com/itohio/gogeiger/pkg/geiger"
)

var core *geiger.Geiger

func main() {
	time.Sleep(STARTUP_DELAY_MS * time.Millisecond)

	// Piezo and gate outputs, detector input with pull-up
	PIN_PIEZO.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_GATE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_DETECT.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	pwm, err := configurePWM()
	if err != nil {
		fail("pwm", err)
	}

	machine.InitADC()
	adc := machine.ADC{Pin: PIN_VSENSE}
	adc.Configure(machine.ADCConfig{})

	lcd, err := configureLCD()
	if err != nil {
		fail("lcd", err)
	}

	cfg := geiger.DefaultConfig()
	cfg.TimeBase.CyclesPerTick = TIMER2_PRESCALE * TIMER2_COUNTS
	cfg.TimeBase.CyclesPerMs = machine.CPUFrequency() / 1000

	core = geiger.New(cfg, geiger.Hardware{
		Sensor:  sensor{adc},
		PWM:     pwm,
		Display: lcd,
		Beeper:  PIN_PIEZO,
	})

	configureInterrupts()

	println("geiger: running")
	if err := core.Run(context.Background(), sleeper{}); err != nil {
		fail("run", err)
	}
}

func fail(what string, err error) {
	for {
		println("geiger:", what, "failed:", err.Error())
		time.Sleep(time.Second)
	}
}

// configureInterrupts starts the Timer2 time base and the detector
// pin-change interrupt.
func configureInterrupts() {
	interrupt.New(avr.IRQ_TIMER2_OVF, func(interrupt.Interrupt) {
		core.TimerInterrupt()
	})
	avr.TCCR2A.Set(0)
	avr.TCCR2B.Set(avr.TCCR2B_CS20 | avr.TCCR2B_CS21 | avr.TCCR2B_CS22) // clk/1024
	avr.TIMSK2.SetBits(avr.TIMSK2_TOIE2)

	interrupt.New(avr.IRQ_PCINT1, func(interrupt.Interrupt) {
		core.DetectorInterrupt(PIN_DETECT.Get())
	})
	avr.PCMSK1.SetBits(avr.PCMSK1_PCINT12)
	avr.PCICR.SetBits(avr.PCICR_PCIE1)
}

// sensor narrows machine.ADC samples to the converter's 10 bits.
type sensor struct {
	adc machine.ADC
}

func (s sensor) Get() uint16 {
	return s.adc.Get() >> ADC_SHIFT
}

type pwmTimer interface {
	Top() uint32
	Set(channel uint8, value uint32)
}

// gate drives the boost converter MOSFET from a Timer1 channel.
type gate struct {
	timer   pwmTimer
	channel uint8
}

func configurePWM() (*gate, error) {
	timer := machine.Timer1
	if err := timer.Configure(machine.PWMConfig{Period: PWM_PERIOD_NS}); err != nil {
		return nil, err
	}
	ch, err := timer.Channel(PIN_GATE)
	if err != nil {
		return nil, err
	}
	timer.Set(ch, 0)
	return &gate{timer: timer, channel: ch}, nil
}

func (g *gate) Top() uint32 {
	return g.timer.Top()
}

func (g *gate) Set(value uint32) {
	g.timer.Set(g.channel, value)
}

var errOutOfBounds = errors.New("lcd: position out of bounds")

// screen adapts the HD44780 driver to display.Display.
type screen struct {
	dev *hd44780.Device
}

func configureLCD() (*screen, error) {
	dev, err := hd44780.NewGPIO4Bit(
		[]machine.Pin{PIN_LCD_D4, PIN_LCD_D5, PIN_LCD_D6, PIN_LCD_D7},
		PIN_LCD_E, PIN_LCD_RS, PIN_LCD_RW,
	)
	if err != nil {
		return nil, err
	}
	if err := dev.Configure(hd44780.Config{Width: display.Width, Height: 2}); err != nil {
		return nil, err
	}
	return &screen{dev: &dev}, nil
}

func (s *screen) WriteText(row, col int, text string) error {
	if row < 0 || row > 1 || col < 0 || col >= display.Width {
		return errOutOfBounds
	}
	if n := display.Width - col; len(text) > n {
		text = text[:n]
	}
	s.dev.SetCursor(uint8(col), uint8(row))
	if _, err := s.dev.Write([]byte(text)); err != nil {
		return err
	}
	return s.dev.Display()
}

func (s *screen) Clear() error {
	s.dev.ClearDisplay()
	return nil
}

// sleeper parks the CPU in idle mode until the next interrupt.
type sleeper struct{}

func (sleeper) Wait() {
	avr.SMCR.Set(avr.SMCR_SE) // idle mode
	avr.Asm("sleep")
	avr.SMCR.Set(0)
}
