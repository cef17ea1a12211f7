package aglcd

import (
	"testing"
	"time"
)

func testConfig() *Config {
	r := &rig{}
	r.rs = r.pin("RS")
	d4, d5, d6, d7 := r.pin("D4"), r.pin("D5"), r.pin("D6"), r.pin("D7")
	r.data = []*testPin{d4, d5, d6, d7}
	cfg := New(r.rs, r.pin("EN")).WithHalfBus(d4, d5, d6, d7)
	cfg.dev.sleep = func(time.Duration) {}
	return cfg
}

func TestRowOffsets(t *testing.T) {
	for cols := byte(0); cols <= 31; cols++ {
		got := testConfig().WithCols(cols).dev.offsets
		want := [4]byte{0x00, 0x40, cols, 0x40 + cols}
		if got != want {
			t.Errorf("WithCols(%d) offsets = %v, want %v", cols, got, want)
		}
	}
}

func TestColsClamped(t *testing.T) {
	got := testConfig().WithCols(40).dev.offsets
	want := [4]byte{0x00, 0x40, 31, 0x40 + 31}
	if got != want {
		t.Errorf("WithCols(40) offsets = %v, want clamp to %v", got, want)
	}
}

func TestLinesRoundTrip(t *testing.T) {
	// The 5x10 font shares a register bit with the 4-line discriminator,
	// so a tall font on a one-line display must not read back as a line
	// count, while two lines plus a tall font collapses into the 4-line
	// encoding.
	tests := []struct {
		lines Lines
		size  Size
		reg   byte
		want  Lines
	}{
		{OneLine, Dots5x8, 0x00, OneLine},
		{TwoLines, Dots5x8, 0x08, TwoLines},
		{FourLines, Dots5x8, 0x0C, FourLines},
		{OneLine, Dots5x10, 0x04, OneLine},
		{TwoLines, Dots5x10, 0x0C, FourLines},
		{FourLines, Dots5x10, 0x0C, FourLines},
	}
	for _, tt := range tests {
		cfg := testConfig().WithSize(tt.size).WithLines(tt.lines)
		if cfg.dev.funcReg&linesMask != tt.reg {
			t.Errorf("WithLines(%s)+WithSize(%#02x) encodes %#02x, want %#02x",
				tt.lines, byte(tt.size), cfg.dev.funcReg&linesMask, tt.reg)
		}
		if got := cfg.dev.Lines(); got != tt.want {
			t.Errorf("Lines() with %s/%#02x = %s, want %s",
				tt.lines, byte(tt.size), got, tt.want)
		}
	}
}

// Four-line mode reuses the font size bit position, so the accessor must
// still tell it apart from two-line mode.
func TestFourLinesDisambiguated(t *testing.T) {
	four := testConfig().WithLines(FourLines).dev
	two := testConfig().WithLines(TwoLines).dev
	if four.Lines() == two.Lines() {
		t.Fatal("four-line and two-line modes not distinguishable")
	}
	if four.Size() != Dots5x8 {
		t.Errorf("Size() in four-line mode = %#02x, want 5x8", byte(four.Size()))
	}
}

func TestWithSize(t *testing.T) {
	d := testConfig().WithSize(Dots5x10).dev
	if d.funcReg&OPT_5x10_Dots == 0 {
		t.Error("WithSize(Dots5x10) did not set the size bit")
	}
	if d.Size() != Dots5x10 {
		t.Errorf("Size() = %#02x, want 5x10", byte(d.Size()))
	}
}

func TestBusSelection(t *testing.T) {
	r := &rig{wide: true}
	r.rs = r.pin("RS")
	var pins [8]*testPin
	for i := range pins {
		pins[i] = r.pin("D")
		r.data = append(r.data, pins[i])
	}

	cfg := New(r.rs, r.pin("EN")).
		WithFullBus(pins[0], pins[1], pins[2], pins[3], pins[4], pins[5], pins[6], pins[7])
	if cfg.dev.Mode() != EightBits {
		t.Fatalf("Mode() after WithFullBus = %s", cfg.dev.Mode())
	}

	// Binding the half bus afterwards flips back to 4-bit framing.
	cfg.WithHalfBus(pins[4], pins[5], pins[6], pins[7])
	if cfg.dev.Mode() != FourBits {
		t.Fatalf("Mode() after WithHalfBus = %s", cfg.dev.Mode())
	}
}

func TestRegisterDefaults(t *testing.T) {
	cfg := testConfig().
		WithDisplay(false).
		WithCursor(true).
		WithBlink(true).
		WithLayout(RightToLeft).
		WithAutoscroll(true)
	d := cfg.dev

	if d.Display() {
		t.Error("WithDisplay(false) ignored")
	}
	if !d.Cursor() {
		t.Error("WithCursor(true) ignored")
	}
	if !d.Blink() {
		t.Error("WithBlink(true) ignored")
	}
	if d.Layout() != RightToLeft {
		t.Error("WithLayout(RightToLeft) ignored")
	}
	if !d.Autoscroll() {
		t.Error("WithAutoscroll(true) ignored")
	}
}

func TestDelayOverrides(t *testing.T) {
	cfg := testConfig().
		WithCommandDelay(5 * time.Millisecond).
		WithCharDelay(time.Millisecond)
	if cfg.dev.cmdDelay != 5*time.Millisecond {
		t.Errorf("command delay = %s", cfg.dev.cmdDelay)
	}
	if cfg.dev.chrDelay != time.Millisecond {
		t.Errorf("character delay = %s", cfg.dev.chrDelay)
	}
}

func TestConfigDoesNoIO(t *testing.T) {
	r := &rig{}
	r.rs = r.pin("RS")
	d4, d5, d6, d7 := r.pin("D4"), r.pin("D5"), r.pin("D6"), r.pin("D7")
	r.data = []*testPin{d4, d5, d6, d7}

	New(r.rs, r.pin("EN")).
		WithHalfBus(d4, d5, d6, d7).
		WithCols(20).
		WithLines(TwoLines).
		WithBlink(true)

	for _, p := range append(r.data, r.rs) {
		if p.outs != 0 {
			t.Errorf("pin %s written %d times before Build", p.name, p.outs)
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrNone, "no error"},
		{ErrNoPinRS, "no RS pin"},
		{ErrNoPinD5, "no D5 pin"},
		{ErrInvalidMode, "invalid bus mode"},
		{ErrorCode(200), "unknown error code"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
