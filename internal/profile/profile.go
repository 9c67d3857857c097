// Package profile holds the sunrise trigger profile: when the sequence
// starts, how long it ramps and holds, and the UTC offset used for the
// trigger comparison. The profile is persisted in RTC memory and refreshed
// from the remote configuration source.
package profile

import "fmt"

// Field bounds. A record violating any of these is rejected wholesale.
const (
	MaxRampMinutes = 120
	MaxHoldMinutes = 120
	MinUTCOffset   = -12
	MaxUTCOffset   = 12
)

// Profile is the persisted sunrise configuration.
type Profile struct {
	TriggerHour    int // 0..23, in the UTC-offset-adjusted convention
	TriggerMinute  int // 0..59
	RampMinutes    int // 0..120, off to full brightness on channel 0
	HoldMinutes    int // 0..120, full brightness before switching off
	UTCOffsetHours int // -12..12, applied to the UTC clock for the trigger match
}

// Default returns the fallback profile used when no valid record is
// persisted: 07:00 trigger, 60 minute ramp, 30 minute hold, UTC+1.
func Default() Profile {
	return Profile{
		TriggerHour:    7,
		TriggerMinute:  0,
		RampMinutes:    60,
		HoldMinutes:    30,
		UTCOffsetHours: 1,
	}
}

// Validate checks every field against its bounds. The record is valid only
// if all fields are; there is no field-by-field recovery.
func (p Profile) Validate() error {
	if p.TriggerHour < 0 || p.TriggerHour > 23 {
		return fmt.Errorf("trigger hour %d out of range 0..23", p.TriggerHour)
	}
	if p.TriggerMinute < 0 || p.TriggerMinute > 59 {
		return fmt.Errorf("trigger minute %d out of range 0..59", p.TriggerMinute)
	}
	if p.RampMinutes < 0 || p.RampMinutes > MaxRampMinutes {
		return fmt.Errorf("ramp duration %dm out of range 0..%d", p.RampMinutes, MaxRampMinutes)
	}
	if p.HoldMinutes < 0 || p.HoldMinutes > MaxHoldMinutes {
		return fmt.Errorf("hold duration %dm out of range 0..%d", p.HoldMinutes, MaxHoldMinutes)
	}
	if p.UTCOffsetHours < MinUTCOffset || p.UTCOffsetHours > MaxUTCOffset {
		return fmt.Errorf("utc offset %dh out of range %d..%d", p.UTCOffsetHours, MinUTCOffset, MaxUTCOffset)
	}
	return nil
}

// String formats the profile for logs.
func (p Profile) String() string {
	return fmt.Sprintf("%02d:%02d ramp=%dm hold=%dm utc%+d",
		p.TriggerHour, p.TriggerMinute, p.RampMinutes, p.HoldMinutes, p.UTCOffsetHours)
}
