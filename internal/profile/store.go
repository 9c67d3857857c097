package profile

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wakelight/sunrised/internal/device"
)

// NVRAM slot layout, one byte per field. The layout is fixed and
// versionless: writer and reader agree on field order and count.
const (
	slotTriggerHour = iota
	slotTriggerMinute
	slotRampMinutes
	slotHoldMinutes
	slotUTCOffset // stored as a two's-complement byte

	// SlotCount is the number of NVRAM slots the store occupies.
	SlotCount
)

// Store persists Profile records into fixed byte slots of the RTC's
// battery-backed memory. Load never fails into the caller: a corrupted
// record is replaced with the default profile and the corruption is only
// logged.
type Store struct {
	mem device.Memory
}

// NewStore creates a store over the given memory.
func NewStore(mem device.Memory) *Store {
	return &Store{mem: mem}
}

// Load reads the persisted profile. The second return value reports whether
// the stored record was invalid and the default was substituted.
func (s *Store) Load() (Profile, bool, error) {
	raw := make([]byte, SlotCount)
	for slot := range raw {
		b, err := s.mem.ReadByte(uint8(slot))
		if err != nil {
			return Profile{}, false, fmt.Errorf("failed to read slot %d: %w", slot, err)
		}
		raw[slot] = b
	}

	p := Profile{
		TriggerHour:    int(raw[slotTriggerHour]),
		TriggerMinute:  int(raw[slotTriggerMinute]),
		RampMinutes:    int(raw[slotRampMinutes]),
		HoldMinutes:    int(raw[slotHoldMinutes]),
		UTCOffsetHours: int(int8(raw[slotUTCOffset])),
	}

	if err := p.Validate(); err != nil {
		log.Warn().Err(err).Str("profile", p.String()).Msg("Stored profile invalid, using defaults")
		return Default(), true, nil
	}

	return p, false, nil
}

// Save validates and persists the profile. An invalid record is rejected
// without touching the stored one, even if the caller is buggy.
func (s *Store) Save(p Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid profile: %w", err)
	}

	raw := [SlotCount]byte{
		slotTriggerHour:   byte(p.TriggerHour),
		slotTriggerMinute: byte(p.TriggerMinute),
		slotRampMinutes:   byte(p.RampMinutes),
		slotHoldMinutes:   byte(p.HoldMinutes),
		slotUTCOffset:     byte(int8(p.UTCOffsetHours)),
	}

	for slot, b := range raw {
		if err := s.mem.WriteByte(uint8(slot), b); err != nil {
			return fmt.Errorf("failed to write slot %d: %w", slot, err)
		}
	}

	log.Debug().Str("profile", p.String()).Msg("Profile persisted")
	return nil
}
