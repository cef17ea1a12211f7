/*
Exposes the pins of a PCF8574 I2C port expander as gpio.PinOut, for LCD
modules reached through the common I2C backpack instead of direct GPIO.

The expander has no register file; every write transmits the full output
byte, so each pin transition costs one bus transaction. Serializing bus
access is the caller's responsibility, the same as for any other i2c.Dev.
*/
package pcf8574

import (
	"errors"
	"fmt"

	aglcd "github.com/mjhouse/ag-lcd"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the address most backpacks ship with, all address
// straps left open.
const DefaultAddr uint16 = 0x27

// Backpack wiring of the common PCF8574 LCD backpack: which expander bit
// drives which LCD line.
const (
	RS        = 0
	RW        = 1
	EN        = 2
	Backlight = 3
	D4        = 4
	D5        = 5
	D6        = 6
	D7        = 7
)

// Expander drives a PCF8574 and hands out its eight lines as output
// pins. The output state is cached so single-pin updates preserve the
// other seven lines.
type Expander struct {
	c     *i2c.Dev
	state byte
}

// New returns an Expander on the given bus. addr 0 selects DefaultAddr;
// the PCF8574 only decodes 0x20-0x27.
func New(b i2c.Bus, addr uint16) (*Expander, error) {
	switch addr {
	case 0:
		addr = DefaultAddr
	case 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27:
	default:
		return nil, fmt.Errorf("pcf8574 %x: address not supported by device", addr)
	}
	return &Expander{c: &i2c.Dev{Bus: b, Addr: addr}}, nil
}

// Pin returns expander line n (0-7) as an output pin.
func (e *Expander) Pin(n int) gpio.PinOut {
	return &expanderPin{parent: e, number: n}
}

func (e *Expander) String() string {
	return fmt.Sprintf("pcf8574{%s}", e.c)
}

func (e *Expander) flush() error {
	return e.c.Tx([]byte{e.state}, nil)
}

// expanderPin adapts a single expander line to gpio.PinOut.
type expanderPin struct {
	parent *Expander
	number int
}

func (p *expanderPin) Name() string {
	return fmt.Sprintf("P%d", p.number)
}

func (p *expanderPin) Number() int {
	return p.number
}

func (p *expanderPin) String() string {
	return fmt.Sprintf("%s.%s", p.parent, p.Name())
}

func (p *expanderPin) Function() string {
	return "Out"
}

func (p *expanderPin) Halt() error {
	return nil
}

func (p *expanderPin) Out(l gpio.Level) error {
	if l {
		p.parent.state |= 1 << p.number
	} else {
		p.parent.state &^= 1 << p.number
	}
	return p.parent.flush()
}

func (p *expanderPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("pcf8574: pwm not supported")
}

var _ gpio.PinOut = &expanderPin{}

// NewBackpack starts configuration of a display reached through a
// PCF8574 backpack, with the standard backpack wiring already bound:
// RS, RW, EN, backlight and a 4-bit bus on D4-D7. Further options can be
// chained before Build.
func NewBackpack(b i2c.Bus, addr uint16) (*aglcd.Config, error) {
	e, err := New(b, addr)
	if err != nil {
		return nil, err
	}
	cfg := aglcd.New(e.Pin(RS), e.Pin(EN)).
		WithRW(e.Pin(RW)).
		WithBacklight(e.Pin(Backlight)).
		WithHalfBus(e.Pin(D4), e.Pin(D5), e.Pin(D6), e.Pin(D7))
	return cfg, nil
}
