package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "journal.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := s.WriteDecision("terminate", "h", "success", 1, ""); err != nil {
		t.Fatalf("WriteDecision failed: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer s.Close()

	entries, err := s.ListDecisions("", 0)
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestWriteDecision(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	entry, err := s.WriteDecision("terminate", "abc123", "success", 4242, "node (PID 4242) exited after SIGTERM")
	if err != nil {
		t.Fatalf("WriteDecision failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("Decision ID should not be empty")
	}
	if entry.Timestamp.IsZero() {
		t.Error("Decision timestamp should be set")
	}

	entries, err := s.ListDecisions("", 10)
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID != entry.ID || got.PID != 4242 || got.InputsHash != "abc123" || got.Outcome != "success" {
		t.Errorf("Round-trip mismatch: %+v", got)
	}
}

func TestWriteDecision_NoPID(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if _, err := s.WriteDecision("baseline.save", "h", "success", 0, ""); err != nil {
		t.Fatalf("WriteDecision failed: %v", err)
	}

	entries, err := s.ListDecisions("baseline.save", 10)
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].PID != 0 || entries[0].Details != "" {
		t.Errorf("Expected empty pid and details, got %+v", entries[0])
	}
}

func TestListDecisions_FilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	for i := 1; i <= 5; i++ {
		if _, err := s.WriteDecision("terminate", "h", "success", i, ""); err != nil {
			t.Fatalf("WriteDecision failed: %v", err)
		}
	}
	if _, err := s.WriteDecision("baseline.save", "h", "success", 0, ""); err != nil {
		t.Fatalf("WriteDecision failed: %v", err)
	}

	entries, err := s.ListDecisions("terminate", 3)
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].PID != 5 {
		t.Errorf("Expected newest entry first (pid 5), got pid %d", entries[0].PID)
	}
	for _, e := range entries {
		if e.Action != "terminate" {
			t.Errorf("Unexpected action %q", e.Action)
		}
	}

	all, err := s.ListDecisions("", 0)
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("Expected 6 entries, got %d", len(all))
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Ping(ctx)
	if err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func newTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}
