package device

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileMemorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvram.bin")

	mem, err := NewFileMemory(path, 5)
	if err != nil {
		t.Fatalf("NewFileMemory() error: %v", err)
	}
	for slot, b := range []byte{7, 30, 60, 30, 1} {
		if err := mem.WriteByte(uint8(slot), b); err != nil {
			t.Fatalf("WriteByte(%d) error: %v", slot, err)
		}
	}

	// Reopen, as after a power cycle.
	reopened, err := NewFileMemory(path, 5)
	if err != nil {
		t.Fatalf("NewFileMemory() reopen error: %v", err)
	}
	for slot, want := range []byte{7, 30, 60, 30, 1} {
		got, err := reopened.ReadByte(uint8(slot))
		if err != nil {
			t.Fatalf("ReadByte(%d) error: %v", slot, err)
		}
		if got != want {
			t.Errorf("slot %d = %d after reopen, want %d", slot, got, want)
		}
	}
}

func TestFileMemoryBoundsChecked(t *testing.T) {
	mem, err := NewFileMemory(filepath.Join(t.TempDir(), "nvram.bin"), 5)
	if err != nil {
		t.Fatalf("NewFileMemory() error: %v", err)
	}

	if _, err := mem.ReadByte(5); err == nil {
		t.Error("ReadByte past the last slot should fail")
	}
	if err := mem.WriteByte(200, 1); err == nil {
		t.Error("WriteByte past the last slot should fail")
	}
}

func TestSimClockSet(t *testing.T) {
	c := NewSimClock()

	target := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	if err := c.Set(target); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := c.Now()
	if err != nil {
		t.Fatalf("Now() error: %v", err)
	}
	if diff := got.Sub(target); diff < 0 || diff > time.Second {
		t.Errorf("Now() = %s, want within 1s after %s", got, target)
	}
	if got.Location() != time.UTC {
		t.Errorf("Now() location = %s, want UTC", got.Location())
	}
}

func TestLogPWMMaxDuty(t *testing.T) {
	tests := []struct {
		bits int
		want uint32
	}{
		{8, 255},
		{12, 4095},
		{16, 65535},
	}

	for _, tt := range tests {
		p := NewLogPWM(tt.bits)
		if got := p.MaxDuty(); got != tt.want {
			t.Errorf("MaxDuty(%d bits) = %d, want %d", tt.bits, got, tt.want)
		}
		if err := p.SetDuty(0, tt.want); err != nil {
			t.Errorf("SetDuty(max) error: %v", err)
		}
		if err := p.SetDuty(0, tt.want+1); err == nil {
			t.Error("SetDuty above max should fail")
		}
	}
}
