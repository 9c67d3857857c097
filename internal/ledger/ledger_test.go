package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wakelight/sunrised/internal/db"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.DB)
}

func TestLedgerAppendAndRecent(t *testing.T) {
	l := testLedger(t)

	if err := l.Append(EventSequenceStarted, "run-1", map[string]any{"ramp_minutes": 60}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := l.Append(EventSequenceCompleted, "run-1", nil); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := l.Append(EventSyncCompleted, "", map[string]any{"config_updated": true}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	entries, err := l.Recent(EventSequenceStarted, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent(sequence_started) = %d entries, want 1", len(entries))
	}
	if entries[0].RunID != "run-1" {
		t.Errorf("run_id = %q, want run-1", entries[0].RunID)
	}
	if entries[0].Payload["ramp_minutes"] != float64(60) {
		t.Errorf("payload ramp_minutes = %v, want 60", entries[0].Payload["ramp_minutes"])
	}
}

func TestLedgerForRun(t *testing.T) {
	l := testLedger(t)

	for _, e := range []EventType{EventSequenceStarted, EventSequenceCompleted} {
		if err := l.Append(e, "run-2", nil); err != nil {
			t.Fatalf("Append(%s) error: %v", e, err)
		}
	}
	if err := l.Append(EventSequenceStarted, "run-3", nil); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	entries, err := l.ForRun("run-2")
	if err != nil {
		t.Fatalf("ForRun() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ForRun(run-2) = %d entries, want 2", len(entries))
	}
	if entries[0].EventType != EventSequenceStarted || entries[1].EventType != EventSequenceCompleted {
		t.Errorf("entries out of order: %s, %s", entries[0].EventType, entries[1].EventType)
	}
}

func TestLedgerRetention(t *testing.T) {
	l := testLedger(t)

	if err := l.Append(EventSyncCompleted, "", nil); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	// A retention window in the future deletes nothing; a negative cutoff
	// far in the past deletes the fresh row.
	deleted, err := l.DeleteOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted %d fresh entries, want 0", deleted)
	}

	deleted, err = l.DeleteOlderThan(-time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d entries, want 1", deleted)
	}
}
