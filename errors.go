/*
Sticky error codes for the LCD driver.

Operations on the display never return errors; almost every one of them
ends in the same pin-write choke point, and forcing callers to unwrap a
result on Clear or Home is useless in a control loop. Instead the last
failure is recorded on the device and can be read back with Err.
*/
package aglcd

// ErrorCode identifies the last misconfiguration observed on the device.
// Codes 0-10 match the pin slot that could not be driven.
type ErrorCode uint8

const (
	ErrNoPinRS ErrorCode = iota
	ErrNoPinEN
	ErrNoPinRW
	ErrNoPinD0
	ErrNoPinD1
	ErrNoPinD2
	ErrNoPinD3
	ErrNoPinD4
	ErrNoPinD5
	ErrNoPinD6
	ErrNoPinD7
	ErrNone
	ErrInvalidMode
)

func (e ErrorCode) String() string {
	switch e {
	case ErrNoPinRS:
		return "no RS pin"
	case ErrNoPinEN:
		return "no EN pin"
	case ErrNoPinRW:
		return "no RW pin"
	case ErrNoPinD0, ErrNoPinD1, ErrNoPinD2, ErrNoPinD3, ErrNoPinD4, ErrNoPinD5, ErrNoPinD6, ErrNoPinD7:
		return "no D" + string(rune('0'+e-ErrNoPinD0)) + " pin"
	case ErrNone:
		return "no error"
	case ErrInvalidMode:
		return "invalid bus mode"
	}
	return "unknown error code"
}
