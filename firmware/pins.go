//go:build tinygo && avr

package main

import "machine"

const (
	// Power-up settling time before the peripherals are touched
	STARTUP_DELAY_MS = 200

	// Boost converter MOSFET gate, driven by Timer1 channel A (OC1A)
	PIN_GATE      = machine.PB1
	PWM_PERIOD_NS = 1e9 / 10000 // 10 kHz

	// Piezo buzzer
	PIN_PIEZO = machine.PC0

	// Tube pulse input, active low, PCINT12
	PIN_DETECT = machine.PC4

	// Tube voltage sense through the 200:1 divider
	PIN_VSENSE = machine.ADC5
	ADC_SHIFT  = 16 - 10 // machine.ADC scales samples to 16 bits

	// HD44780 in 4-bit mode on port D
	PIN_LCD_RS = machine.PD0
	PIN_LCD_RW = machine.PD1
	PIN_LCD_E  = machine.PD2
	PIN_LCD_D4 = machine.PD4
	PIN_LCD_D5 = machine.PD5
	PIN_LCD_D6 = machine.PD6
	PIN_LCD_D7 = machine.PD7

	// Timer2 overflows every 256 counts of the /1024 prescaled clock
	TIMER2_PRESCALE = 1024
	TIMER2_COUNTS   = 256
)
