package device

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SimClock is a Clock backed by the system clock plus an adjustable offset.
// Set does not touch the host clock; it records the delta between the host
// clock and the authoritative time, which is how a battery-backed RTC behaves
// from the caller's point of view.
type SimClock struct {
	mu     sync.Mutex
	offset time.Duration
}

// NewSimClock creates a simulated clock tracking the host clock.
func NewSimClock() *SimClock {
	return &SimClock{}
}

// Now returns the current simulated time in UTC.
func (c *SimClock) Now() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().UTC().Add(c.offset), nil
}

// Set adjusts the simulated clock to the given time.
func (c *SimClock) Set(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = t.UTC().Sub(time.Now().UTC())
	log.Info().Time("time", t.UTC()).Dur("offset", c.offset).Msg("Simulated clock adjusted")
	return nil
}

// FileMemory is a Memory persisted to a small binary file, standing in for
// the RTC's battery-backed RAM. Every write is flushed to disk so the
// contents survive a restart the same way NVRAM survives power loss.
type FileMemory struct {
	mu    sync.Mutex
	path  string
	slots []byte
}

// NewFileMemory opens (or creates) a file-backed memory with the given
// number of slots. An existing file shorter than size is padded with zeros;
// a longer one is truncated to size.
func NewFileMemory(path string, size int) (*FileMemory, error) {
	slots := make([]byte, size)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		copy(slots, data)
	case os.IsNotExist(err):
		// First boot: all-zero memory, persisted on first write
	default:
		return nil, fmt.Errorf("failed to read memory file: %w", err)
	}

	return &FileMemory{path: path, slots: slots}, nil
}

// ReadByte returns the byte stored at the given slot.
func (m *FileMemory) ReadByte(slot uint8) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(slot) >= len(m.slots) {
		return 0, fmt.Errorf("memory slot %d out of range (size %d)", slot, len(m.slots))
	}
	return m.slots[slot], nil
}

// WriteByte stores a byte at the given slot and flushes the file.
func (m *FileMemory) WriteByte(slot uint8, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(slot) >= len(m.slots) {
		return fmt.Errorf("memory slot %d out of range (size %d)", slot, len(m.slots))
	}
	m.slots[slot] = value
	if err := os.WriteFile(m.path, m.slots, 0o644); err != nil {
		return fmt.Errorf("failed to persist memory file: %w", err)
	}
	return nil
}

// LogPWM is a PWM that logs duty writes instead of driving hardware. Used
// for running the daemon without an LED board attached.
type LogPWM struct {
	maxDuty uint32
}

// NewLogPWM creates a logging PWM with the given output resolution.
func NewLogPWM(resolutionBits int) *LogPWM {
	return &LogPWM{maxDuty: uint32(1)<<resolutionBits - 1}
}

// SetDuty logs the duty write.
func (p *LogPWM) SetDuty(channel int, value uint32) error {
	if value > p.maxDuty {
		return fmt.Errorf("duty %d exceeds max %d", value, p.maxDuty)
	}
	log.Debug().Int("channel", channel).Uint32("duty", value).Msg("PWM write")
	return nil
}

// MaxDuty returns the full-brightness duty value.
func (p *LogPWM) MaxDuty() uint32 {
	return p.maxDuty
}
