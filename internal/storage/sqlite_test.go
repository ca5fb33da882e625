package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/solar-scene/internal/host"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	lines := []string{
		"CRP p1 1 2 3",
		"CRO ship 0 0 0 1 1 1 0 0 0 Box.mdl Stone.xml Mushroom.xml 1",
		"MOV ship p1",
	}
	for _, line := range lines {
		if _, err := store.RecordCommand(CommandEntry{Origin: "udp", Line: line, Opcode: line[:3]}); err != nil {
			t.Fatalf("RecordCommand() failed: %v", err)
		}
	}

	entries, err := store.RecentCommands(2)
	if err != nil {
		t.Fatalf("RecentCommands() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Line != "MOV ship p1" {
		t.Errorf("Expected newest entry first, got %q", entries[0].Line)
	}
	if entries[0].Status != StatusOK {
		t.Errorf("Expected default status %q, got %q", StatusOK, entries[0].Status)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
}

func TestStoreReplayableCommands(t *testing.T) {
	store := openTestStore(t)

	entries := []CommandEntry{
		{Origin: "udp", Line: "CRP a 0 0 0", Opcode: "CRP"},
		{Origin: "udp", Line: "MOV ghost a", Opcode: "MOV", Status: StatusError, Error: "object not found"},
		{Origin: "replay", Line: "CRP old 0 0 0", Opcode: "CRP"},
		{Origin: "exec", Line: "CRP b 1 1 1", Opcode: "CRP"},
		{Origin: "ssh", Line: "CRP c 2 2 2", Opcode: "CRP"},
		{Origin: "udp", Line: "X", Opcode: "X"},
	}
	for _, e := range entries {
		if _, err := store.RecordCommand(e); err != nil {
			t.Fatalf("RecordCommand() failed: %v", err)
		}
	}

	lines, err := store.ReplayableCommands()
	if err != nil {
		t.Fatalf("ReplayableCommands() failed: %v", err)
	}

	expected := []string{"CRP a 0 0 0", "CRP c 2 2 2"}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want)
		}
	}
}

func TestStoreClearCommands(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.RecordCommand(CommandEntry{Origin: "udp", Line: "CRP a 0 0 0", Opcode: "CRP"}); err != nil {
		t.Fatalf("RecordCommand() failed: %v", err)
	}
	if err := store.ClearCommands(); err != nil {
		t.Fatalf("ClearCommands() failed: %v", err)
	}

	entries, err := store.RecentCommands(10)
	if err != nil {
		t.Fatalf("RecentCommands() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty journal, got %d entries", len(entries))
	}
}

func TestStoreCommandStats(t *testing.T) {
	store := openTestStore(t)

	// Empty journal
	stats, err := store.CommandStats()
	if err != nil {
		t.Fatalf("CommandStats() failed: %v", err)
	}
	if stats.Total != 0 || stats.Failed != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if !stats.LastAt.IsZero() {
		t.Errorf("Expected zero LastAt, got %v", stats.LastAt)
	}

	entries := []CommandEntry{
		{Origin: "udp", Line: "CRP a 0 0 0", Opcode: "CRP"},
		{Origin: "udp", Line: "CRP b 0 0 0", Opcode: "CRP"},
		{Origin: "udp", Line: "MOV x a", Opcode: "MOV", Status: StatusError, Error: "object not found"},
	}
	for _, e := range entries {
		if _, err := store.RecordCommand(e); err != nil {
			t.Fatalf("RecordCommand() failed: %v", err)
		}
	}

	stats, err = store.CommandStats()
	if err != nil {
		t.Fatalf("CommandStats() failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Expected total 3, got %d", stats.Total)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected failed 1, got %d", stats.Failed)
	}
	if stats.ByOpcode["CRP"] != 2 || stats.ByOpcode["MOV"] != 1 {
		t.Errorf("Unexpected opcode counts: %v", stats.ByOpcode)
	}
	if stats.LastAt.IsZero() {
		t.Error("Expected LastAt to be set")
	}
}

func TestStoreSessions(t *testing.T) {
	store := openTestStore(t)

	if err := store.SessionOpened("s1", "127.0.0.1:5000"); err != nil {
		t.Fatalf("SessionOpened() failed: %v", err)
	}
	// Duplicate open is ignored
	if err := store.SessionOpened("s1", "127.0.0.1:5000"); err != nil {
		t.Fatalf("SessionOpened() duplicate failed: %v", err)
	}
	if err := store.SessionOpened("s2", "127.0.0.1:5001"); err != nil {
		t.Fatalf("SessionOpened() failed: %v", err)
	}
	if err := store.SessionClosed("s1", "timeout", 7); err != nil {
		t.Fatalf("SessionClosed() failed: %v", err)
	}

	sessions, err := store.RecentSessions(10)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	// Newest first
	if sessions[0].SessionID != "s2" {
		t.Errorf("Expected s2 first, got %s", sessions[0].SessionID)
	}
	if !sessions[0].DisconnectedAt.IsZero() {
		t.Error("Expected open session to have zero DisconnectedAt")
	}

	closed := sessions[1]
	if closed.Reason != "timeout" || closed.Messages != 7 {
		t.Errorf("Unexpected closed session: %+v", closed)
	}
	if closed.DisconnectedAt.IsZero() {
		t.Error("Expected DisconnectedAt to be set")
	}
}

func TestStoreJournal(t *testing.T) {
	store := openTestStore(t)

	var j host.Journal = store

	if err := j.JournalSession(host.SessionRecord{Session: "abc", Remote: "10.0.0.1:9"}); err != nil {
		t.Fatalf("JournalSession() open failed: %v", err)
	}
	if err := j.JournalCommand(host.CommandRecord{
		Session: "abc", Remote: "10.0.0.1:9", Origin: "udp",
		Line: "MOV a b", Opcode: "MOV", Err: "world: object not found",
	}); err != nil {
		t.Fatalf("JournalCommand() failed: %v", err)
	}
	if err := j.JournalSession(host.SessionRecord{Session: "abc", Closed: true, Reason: "closed", Messages: 1}); err != nil {
		t.Fatalf("JournalSession() close failed: %v", err)
	}

	entries, err := store.RecentCommands(1)
	if err != nil {
		t.Fatalf("RecentCommands() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Status != StatusError || entries[0].SessionID != "abc" {
		t.Errorf("Unexpected entry: %+v", entries[0])
	}

	sessions, err := store.RecentSessions(1)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Reason != "closed" {
		t.Errorf("Unexpected sessions: %+v", sessions)
	}
}
