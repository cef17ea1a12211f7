/*
Pre-initialization configuration for the LCD driver.

A Config accumulates pin bindings and register defaults without touching
the hardware; Build runs the controller's power-on handshake and hands
back the usable Dev.
*/
package aglcd

import (
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultCols is the column count used when WithCols is not called.
	// 16x2 is the most common module for this controller.
	DefaultCols = 16

	// DefaultCommandDelay and DefaultCharDelay are conservative settle
	// delays that work across controller variants without busy polling.
	// Tune them with WithCommandDelay / WithCharDelay for faster parts.
	DefaultCommandDelay = 3500 * time.Microsecond
	DefaultCharDelay    = 450 * time.Microsecond

	// Power-on handshake timing from the HD44780 datasheet, with margin.
	powerOnDelay = 50 * time.Millisecond
	resetDelay   = 4500 * time.Microsecond
	resetSettle  = 150 * time.Microsecond
)

// Config accumulates display configuration before the device is brought
// online. All methods are chainable and perform no I/O; Build is the
// terminal operation.
type Config struct {
	dev          *Dev
	reliableInit time.Duration
	reliable     bool
}

// New starts configuration of a display wired with the mandatory RS and
// EN control pins. Defaults are a 4-bit bus, one line, 5x8 characters,
// display on, cursor and blink off, left-to-right text, autoscroll off
// and 16 columns. Data pins must still be bound with WithHalfBus or
// WithFullBus before Build.
func New(rs, en gpio.PinOut) *Config {
	d := &Dev{
		funcReg:  byte(FourBits) | byte(OneLine) | byte(Dots5x8),
		ctrlReg:  OPT_Enable_Display,
		modeReg:  OPT_Increment,
		offsets:  rowOffsets(DefaultCols),
		cmdDelay: DefaultCommandDelay,
		chrDelay: DefaultCharDelay,
		sleep:    time.Sleep,
		code:     ErrNone,
	}
	d.pins[pinRS] = rs
	d.pins[pinEN] = en
	return &Config{dev: d}
}

// rowOffsets computes the DDRAM base address per row. Rows 2 and 3 sit
// past the column count of rows 0 and 1 and only matter in 4-line mode.
func rowOffsets(cols byte) [4]byte {
	return [4]byte{0x00, 0x40, cols, 0x40 + cols}
}

// WithCols sets the column count used to address rows 2 and 3. Values
// are clamped to [0,31].
func (c *Config) WithCols(cols byte) *Config {
	if cols > 31 {
		cols = 31
	}
	c.dev.offsets = rowOffsets(cols)
	return c
}

// WithHalfBus binds the four data pins of a 4-bit bus and selects 4-bit
// framing. The parameters are named after the pins on the LCD itself:
// whatever drives D4 on the module goes in d4.
func (c *Config) WithHalfBus(d4, d5, d6, d7 gpio.PinOut) *Config {
	c.dev.funcReg &^= OPT_8_Bit_Mode
	c.dev.pins[pinD4] = d4
	c.dev.pins[pinD5] = d5
	c.dev.pins[pinD6] = d6
	c.dev.pins[pinD7] = d7
	return c
}

// WithFullBus binds all eight data pins and selects 8-bit framing.
func (c *Config) WithFullBus(d0, d1, d2, d3, d4, d5, d6, d7 gpio.PinOut) *Config {
	c.dev.funcReg |= OPT_8_Bit_Mode
	c.dev.pins[pinD0] = d0
	c.dev.pins[pinD1] = d1
	c.dev.pins[pinD2] = d2
	c.dev.pins[pinD3] = d3
	c.dev.pins[pinD4] = d4
	c.dev.pins[pinD5] = d5
	c.dev.pins[pinD6] = d6
	c.dev.pins[pinD7] = d7
	return c
}

// WithRW binds the optional RW pin. When absent the module's RW line is
// assumed hard-wired to ground, leaving the controller permanently in
// write mode.
func (c *Config) WithRW(rw gpio.PinOut) *Config {
	c.dev.pins[pinRW] = rw
	return c
}

// WithBacklight binds the optional backlight pin.
func (c *Config) WithBacklight(bl gpio.PinOut) *Config {
	c.dev.pins[pinBacklight] = bl
	return c
}

// WithSize sets the character cell size.
func (c *Config) WithSize(value Size) *Config {
	if value == Dots5x10 {
		c.dev.funcReg |= OPT_5x10_Dots
	} else {
		c.dev.funcReg &^= OPT_5x10_Dots
	}
	return c
}

// WithLines sets the line count.
func (c *Config) WithLines(value Lines) *Config {
	switch value {
	case FourLines:
		c.dev.funcReg |= byte(FourLines)
	case TwoLines:
		c.dev.funcReg |= byte(TwoLines)
	default:
		c.dev.funcReg &^= byte(TwoLines)
	}
	return c
}

// WithLayout sets the initial text direction.
func (c *Config) WithLayout(value Layout) *Config {
	if value == LeftToRight {
		c.dev.modeReg |= OPT_Increment
	} else {
		c.dev.modeReg &^= OPT_Increment
	}
	return c
}

// WithDisplay sets whether the display starts on.
func (c *Config) WithDisplay(on bool) *Config {
	if on {
		c.dev.ctrlReg |= OPT_Enable_Display
	} else {
		c.dev.ctrlReg &^= OPT_Enable_Display
	}
	return c
}

// WithCursor sets whether the cursor starts on.
func (c *Config) WithCursor(on bool) *Config {
	if on {
		c.dev.ctrlReg |= OPT_Enable_Cursor
	} else {
		c.dev.ctrlReg &^= OPT_Enable_Cursor
	}
	return c
}

// WithBlink sets whether the cursor background starts blinking.
func (c *Config) WithBlink(on bool) *Config {
	if on {
		c.dev.ctrlReg |= OPT_Enable_Blink
	} else {
		c.dev.ctrlReg &^= OPT_Enable_Blink
	}
	return c
}

// WithAutoscroll sets whether autoscroll starts on.
func (c *Config) WithAutoscroll(on bool) *Config {
	if on {
		c.dev.modeReg |= OPT_Autoscroll
	} else {
		c.dev.modeReg &^= OPT_Autoscroll
	}
	return c
}

// WithCommandDelay overrides the settle delay after command writes.
func (c *Config) WithCommandDelay(delay time.Duration) *Config {
	c.dev.cmdDelay = delay
	return c
}

// WithCharDelay overrides the settle delay before character writes.
func (c *Config) WithCharDelay(delay time.Duration) *Config {
	c.dev.chrDelay = delay
	return c
}

// WithReliableInit toggles the display off and on three times before the
// power-on handshake, with the given delay between toggles. Some modules
// do not reach a stable state on the first initialization pass; the
// toggling is an empirical workaround, not part of the documented
// protocol. A delay around 10ms tends to work.
func (c *Config) WithReliableInit(toggleDelay time.Duration) *Config {
	c.reliableInit = toggleDelay
	c.reliable = true
	return c
}

// Build initializes the controller to the accumulated configuration and
// returns the usable device. The handshake below is order-sensitive and
// the waits are mandatory; the controller powers up in an undefined bus
// state and the repeated resets are what synchronize it.
func (c *Config) Build() *Dev {
	d := c.dev

	if c.reliable {
		d.toggleInit(c.reliableInit)
	}

	log.Infof("aglcd: initializing %s bus", d.Mode())
	d.sleep(powerOnDelay)

	d.set(pinRS, gpio.Low)
	d.set(pinEN, gpio.Low)
	if d.exists(pinRW) {
		d.set(pinRW, gpio.Low)
	}

	if d.Mode() == FourBits {
		// The raw 0x03 nibble forces 8-bit mode from any prior state;
		// 0x02 then commits 4-bit framing.
		d.update(0x03)
		d.sleep(resetDelay)

		d.update(0x03)
		d.sleep(resetDelay)

		d.update(0x03)
		d.sleep(resetSettle)

		d.update(0x02)
	} else {
		d.command(CMD_Function_Set | d.funcReg)
		d.sleep(resetDelay)

		d.command(CMD_Function_Set | d.funcReg)
		d.sleep(resetDelay)

		d.command(CMD_Function_Set | d.funcReg)
		d.sleep(resetSettle)
	}

	// Function set must land before the control and entry mode registers
	// mean anything.
	d.command(CMD_Function_Set | d.funcReg)
	d.sleep(d.cmdDelay)

	d.command(CMD_Display_Control | d.ctrlReg)
	d.sleep(d.cmdDelay)

	d.command(CMD_Entry_Mode | d.modeReg)
	d.sleep(d.cmdDelay)

	d.Clear()
	d.Home()

	d.validate()
	if d.code != ErrNone {
		log.Warnf("aglcd: misconfigured display: %s", d.code)
	}
	return d
}

// toggleInit is the reliable-init pre-step: three off/on toggles ending
// in the configured display state.
func (d *Dev) toggleInit(toggleDelay time.Duration) {
	on := d.Display()
	for i := 0; i < 3; i++ {
		d.sleep(toggleDelay)
		d.SetDisplay(!on)
		d.sleep(toggleDelay)
		d.SetDisplay(on)
	}
}
