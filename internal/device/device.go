// Package device defines the hardware collaborator interfaces: the real-time
// clock with its battery-backed memory, and the PWM output driving the LED
// channels. Implementations live next to the interfaces; the rest of the
// system only ever sees these contracts.
package device

import "time"

// Clock is a settable wall clock. Implementations keep time in UTC.
type Clock interface {
	// Now returns the current time in UTC.
	Now() (time.Time, error)

	// Set adjusts the clock to the given time.
	Set(t time.Time) error
}

// Memory is byte-addressable non-volatile storage (e.g. the battery-backed
// RAM of a DS1302/DS1307 RTC). Slot layout is agreed between writer and
// reader; there is no format negotiation.
type Memory interface {
	ReadByte(slot uint8) (byte, error)
	WriteByte(slot uint8, value byte) error
}

// PWM drives the LED output channels.
type PWM interface {
	// SetDuty sets the duty cycle for a channel. Value range is 0..MaxDuty.
	SetDuty(channel int, value uint32) error

	// MaxDuty returns the full-brightness duty value (2^resolution - 1).
	MaxDuty() uint32
}
