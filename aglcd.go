/*
Drives HD44780-family character LCD controllers through discrete GPIO
lines, in either 4-bit or 8-bit bus mode.

The controller exposes no reliable busy flag in the common wiring (RW is
usually tied to ground), so every command and character write is followed
by a fixed settle delay instead of polling.
*/
package aglcd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

const (
	// Commands
	CMD_Clear_Display        = 0x01
	CMD_Return_Home          = 0x02
	CMD_Entry_Mode           = 0x04
	CMD_Display_Control      = 0x08
	CMD_Cursor_Display_Shift = 0x10
	CMD_Function_Set         = 0x20
	CMD_CGRAM_Set            = 0x40
	CMD_DDRAM_Set            = 0x80

	// Options
	OPT_Increment      = 0x02 // CMD_Entry_Mode, 0 = right to left
	OPT_Autoscroll     = 0x01 // CMD_Entry_Mode
	OPT_Enable_Display = 0x04 // CMD_Display_Control
	OPT_Enable_Cursor  = 0x02 // CMD_Display_Control
	OPT_Enable_Blink   = 0x01 // CMD_Display_Control
	OPT_Display_Shift  = 0x08 // CMD_Cursor_Display_Shift, 0 = move cursor
	OPT_Shift_Right    = 0x04 // CMD_Cursor_Display_Shift, 0 = left
	OPT_8_Bit_Mode     = 0x10 // CMD_Function_Set, 0 = 4-bit bus
	OPT_2_Lines        = 0x08 // CMD_Function_Set, 0 = 1 line
	OPT_5x10_Dots      = 0x04 // CMD_Function_Set, 0 = 5x8 dots
)

// Pin slots. The order of the first eleven matches their ErrorCode.
const (
	pinRS = iota
	pinEN
	pinRW
	pinD0
	pinD1
	pinD2
	pinD3
	pinD4
	pinD5
	pinD6
	pinD7
	pinBacklight
	pinCount
)

// Mode is the bus width the display is wired for.
type Mode byte

const (
	FourBits  Mode = 0x00
	EightBits Mode = OPT_8_Bit_Mode
)

func (m Mode) String() string {
	if m == EightBits {
		return "8-bit"
	}
	return "4-bit"
}

// Lines is the number of display lines.
//
// The HD44780 has no real notion of a 4-line display; 4-line modules are
// driven as 2-line displays with the lower half addressed past the column
// count. The controller ignores the font size bit whenever the 2-line bit
// is set, so that bit position doubles as the 4-line discriminator. Keep
// the 0x0C encoding as is, the hardware depends on it.
type Lines byte

const (
	OneLine   Lines = 0x00
	TwoLines  Lines = OPT_2_Lines
	FourLines Lines = 0x0C
)

const linesMask = 0x0C

// Size is the character cell size.
type Size byte

const (
	Dots5x8  Size = 0x00
	Dots5x10 Size = OPT_5x10_Dots
)

// Layout is the text direction.
type Layout byte

const (
	RightToLeft Layout = 0x00
	LeftToRight Layout = OPT_Increment
)

// Scroll is the direction for display scrolling.
type Scroll byte

const (
	ScrollLeft  Scroll = 0x00
	ScrollRight Scroll = OPT_Shift_Right
)

// Dev is an initialized display. Create one with New followed by Build.
//
// A Dev owns its pins exclusively and is not safe for concurrent use;
// every operation busy-waits through its settle delay before returning.
type Dev struct {
	pins     [pinCount]gpio.PinOut
	funcReg  byte // bus width, line count, character size
	ctrlReg  byte // display, cursor, blink
	modeReg  byte // layout, autoscroll
	offsets  [4]byte
	cmdDelay time.Duration
	chrDelay time.Duration
	sleep    func(time.Duration)
	code     ErrorCode
}

func (d *Dev) String() string {
	return fmt.Sprintf("aglcd{%s %s}", d.Mode(), d.Lines())
}

func (l Lines) String() string {
	switch l {
	case FourLines:
		return "4 lines"
	case TwoLines:
		return "2 lines"
	}
	return "1 line"
}

// Err returns the sticky error code. It starts out as ErrNone and is
// overwritten every time a required pin turns out to be unbound, or when
// bus validation fails at the end of Build. It is never cleared.
func (d *Dev) Err() ErrorCode {
	return d.code
}

// Print writes text to the display at the current cursor position. Each
// rune is truncated to the controller's one-byte character code; managing
// line width is the caller's business.
func (d *Dev) Print(text string) {
	for _, r := range text {
		d.Write(byte(r))
	}
}

// Write sends a single character code to the display.
func (d *Dev) Write(value byte) {
	d.sleep(d.chrDelay)
	d.send(value, true)
}

// Clear clears the display.
func (d *Dev) Clear() {
	d.command(CMD_Clear_Display)
	d.sleep(d.cmdDelay)
}

// Home returns the cursor to the top-left position and resets any scroll.
func (d *Dev) Home() {
	d.command(CMD_Return_Home)
	d.sleep(d.cmdDelay)
}

// SetPosition moves the cursor to the given column and row. Rows past the
// end of the display clamp to the last addressable row.
func (d *Dev) SetPosition(col, row byte) {
	const maxLines = 4

	var numLines byte
	switch d.Lines() {
	case FourLines:
		numLines = 4
	case TwoLines:
		numLines = 2
	default:
		numLines = 1
	}

	if row >= maxLines {
		row = maxLines - 1
	}
	if row >= numLines {
		row = numLines - 1
	}

	d.command(CMD_DDRAM_Set | (col + d.offsets[row]))
	d.sleep(d.cmdDelay)
}

// SetScroll scrolls the display contents by distance positions. The
// controller only shifts one position per instruction, so this issues
// distance commands and takes time proportional to it.
func (d *Dev) SetScroll(direction Scroll, distance byte) {
	command := byte(CMD_Cursor_Display_Shift | OPT_Display_Shift | byte(direction))
	for i := byte(0); i < distance; i++ {
		d.command(command)
		d.sleep(d.cmdDelay)
	}
}

// ScrollRight scrolls the display contents to the right.
func (d *Dev) ScrollRight(distance byte) {
	d.SetScroll(ScrollRight, distance)
}

// ScrollLeft scrolls the display contents to the left.
func (d *Dev) ScrollLeft(distance byte) {
	d.SetScroll(ScrollLeft, distance)
}

// SetLayout sets the text direction.
func (d *Dev) SetLayout(layout Layout) {
	if layout == LeftToRight {
		d.modeReg |= OPT_Increment
	} else {
		d.modeReg &^= OPT_Increment
	}
	d.command(CMD_Entry_Mode | d.modeReg)
	d.sleep(d.cmdDelay)
}

// LayoutLeftToRight sets left-to-right text direction.
func (d *Dev) LayoutLeftToRight() {
	d.SetLayout(LeftToRight)
}

// LayoutRightToLeft sets right-to-left text direction.
func (d *Dev) LayoutRightToLeft() {
	d.SetLayout(RightToLeft)
}

// SetDisplay turns the display on or off.
func (d *Dev) SetDisplay(on bool) {
	if on {
		d.ctrlReg |= OPT_Enable_Display
	} else {
		d.ctrlReg &^= OPT_Enable_Display
	}
	d.command(CMD_Display_Control | d.ctrlReg)
	d.sleep(d.cmdDelay)
}

// DisplayOn turns the display on.
func (d *Dev) DisplayOn() { d.SetDisplay(true) }

// DisplayOff turns the display off.
func (d *Dev) DisplayOff() { d.SetDisplay(false) }

// SetCursor turns the cursor on or off.
func (d *Dev) SetCursor(on bool) {
	if on {
		d.ctrlReg |= OPT_Enable_Cursor
	} else {
		d.ctrlReg &^= OPT_Enable_Cursor
	}
	d.command(CMD_Display_Control | d.ctrlReg)
	d.sleep(d.cmdDelay)
}

// CursorOn turns the cursor on.
func (d *Dev) CursorOn() { d.SetCursor(true) }

// CursorOff turns the cursor off.
func (d *Dev) CursorOff() { d.SetCursor(false) }

// SetBlink makes the cursor background blink or stop blinking.
func (d *Dev) SetBlink(on bool) {
	if on {
		d.ctrlReg |= OPT_Enable_Blink
	} else {
		d.ctrlReg &^= OPT_Enable_Blink
	}
	d.command(CMD_Display_Control | d.ctrlReg)
	d.sleep(d.cmdDelay)
}

// BlinkOn makes the cursor background blink.
func (d *Dev) BlinkOn() { d.SetBlink(true) }

// BlinkOff stops the cursor background blinking.
func (d *Dev) BlinkOff() { d.SetBlink(false) }

// SetAutoscroll turns autoscroll on or off.
func (d *Dev) SetAutoscroll(on bool) {
	if on {
		d.modeReg |= OPT_Autoscroll
	} else {
		d.modeReg &^= OPT_Autoscroll
	}
	d.command(CMD_Entry_Mode | d.modeReg)
	d.sleep(d.cmdDelay)
}

// AutoscrollOn turns autoscroll on.
func (d *Dev) AutoscrollOn() { d.SetAutoscroll(true) }

// AutoscrollOff turns autoscroll off.
func (d *Dev) AutoscrollOff() { d.SetAutoscroll(false) }

// SetBacklight switches the backlight pin, if one was bound. Without a
// backlight pin this is a no-op; backlight is optional and its absence is
// not an error.
func (d *Dev) SetBacklight(on bool) {
	if p := d.pins[pinBacklight]; p != nil {
		_ = p.Out(gpio.Level(on))
	}
}

// BacklightOn turns the backlight on.
func (d *Dev) BacklightOn() { d.SetBacklight(true) }

// BacklightOff turns the backlight off.
func (d *Dev) BacklightOff() { d.SetBacklight(false) }

// SetCharacter programs a custom glyph into one of the controller's eight
// CGRAM slots. The slot is masked into the range 0-7, possibly replacing
// an existing glyph. The glyph displays at character code slot.
func (d *Dev) SetCharacter(slot byte, glyph [8]byte) {
	slot &= 0x07
	d.command(CMD_CGRAM_Set | slot<<3)
	for _, row := range glyph {
		d.Write(row)
	}
}

// Mode returns the configured bus width.
func (d *Dev) Mode() Mode {
	return Mode(d.funcReg & OPT_8_Bit_Mode)
}

// Lines returns the configured line count, disambiguating 4-line mode
// from 2-line mode. A lone font size bit (5x10 on a one-line display)
// is not a line count and reads back as one line.
func (d *Dev) Lines() Lines {
	switch d.funcReg & linesMask {
	case byte(FourLines):
		return FourLines
	case byte(TwoLines):
		return TwoLines
	}
	return OneLine
}

// Size returns the configured character cell size.
func (d *Dev) Size() Size {
	if d.Lines() == FourLines {
		// The size bit position carries the 4-line discriminator; the
		// controller falls back to 5x8 in any multi-line mode.
		return Dots5x8
	}
	return Size(d.funcReg & OPT_5x10_Dots)
}

// Layout returns the configured text direction.
func (d *Dev) Layout() Layout {
	return Layout(d.modeReg & OPT_Increment)
}

// Display reports whether the display is on.
func (d *Dev) Display() bool {
	return d.ctrlReg&OPT_Enable_Display != 0
}

// Cursor reports whether the cursor is on.
func (d *Dev) Cursor() bool {
	return d.ctrlReg&OPT_Enable_Cursor != 0
}

// Blink reports whether the cursor background blinks.
func (d *Dev) Blink() bool {
	return d.ctrlReg&OPT_Enable_Blink != 0
}

// Autoscroll reports whether autoscroll is on.
func (d *Dev) Autoscroll() bool {
	return d.modeReg&OPT_Autoscroll != 0
}

func (d *Dev) command(value byte) {
	d.send(value, false)
}

// send is the single choke point for all controller traffic. RS selects
// between the command register (false) and data register (true). In
// 4-bit mode the byte goes out high nibble first.
func (d *Dev) send(value byte, data bool) {
	log.Debugf("send %#02x data=%v", value, data)
	d.set(pinRS, gpio.Level(data))
	if d.exists(pinRW) {
		d.set(pinRW, gpio.Low)
	}
	if d.Mode() == FourBits {
		d.update(value >> 4)
		d.update(value)
	} else {
		d.update(value)
	}
}

// update presents one bus word on the data lines and latches it with an
// enable pulse. EN stays low while the data lines change.
func (d *Dev) update(value byte) {
	d.set(pinEN, gpio.Low)
	if d.Mode() == FourBits {
		d.set(pinD7, gpio.Level(value>>3&1 != 0))
		d.set(pinD6, gpio.Level(value>>2&1 != 0))
		d.set(pinD5, gpio.Level(value>>1&1 != 0))
		d.set(pinD4, gpio.Level(value&1 != 0))
	} else {
		d.set(pinD7, gpio.Level(value>>7&1 != 0))
		d.set(pinD6, gpio.Level(value>>6&1 != 0))
		d.set(pinD5, gpio.Level(value>>5&1 != 0))
		d.set(pinD4, gpio.Level(value>>4&1 != 0))
		d.set(pinD3, gpio.Level(value>>3&1 != 0))
		d.set(pinD2, gpio.Level(value>>2&1 != 0))
		d.set(pinD1, gpio.Level(value>>1&1 != 0))
		d.set(pinD0, gpio.Level(value&1 != 0))
	}
	d.pulse()
}

func (d *Dev) pulse() {
	d.set(pinEN, gpio.High)
	d.set(pinEN, gpio.Low)
}

// set drives one pin slot. A missing or failing pin is swallowed here and
// recorded in the sticky error code; callers never see it.
func (d *Dev) set(slot int, level gpio.Level) {
	p := d.pins[slot]
	if p == nil {
		d.code = ErrorCode(slot)
		return
	}
	if err := p.Out(level); err != nil {
		d.code = ErrorCode(slot)
	}
}

func (d *Dev) exists(slot int) bool {
	return d.pins[slot] != nil
}

// validate records an error when no data pin of the active bus width is
// bound at all. It cannot catch pins wired to the wrong role, only total
// absence; partially wired buses surface as missing-pin codes instead.
func (d *Dev) validate() {
	var bound bool
	if d.Mode() == FourBits {
		bound = d.exists(pinD4) || d.exists(pinD5) || d.exists(pinD6) || d.exists(pinD7)
	} else {
		for slot := pinD0; slot <= pinD7; slot++ {
			if d.exists(slot) {
				bound = true
				break
			}
		}
	}
	if !bound {
		d.code = ErrInvalidMode
	}
}
