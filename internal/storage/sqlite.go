// Package storage provides SQLite-based persistence for the scene command
// journal and client session history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/solar-scene/internal/host"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Store manages the SQLite database connection for the journal.
type Store struct {
	db *sql.DB
}

// CommandEntry represents a single journaled command line.
type CommandEntry struct {
	ID        int64
	SessionID string // Empty for local origins
	Remote    string
	Origin    string // "udp", "ssh", "replay", "exec"
	Line      string
	Opcode    string
	Status    string // StatusOK or StatusError
	Error     string
	CreatedAt time.Time
}

// SessionEntry represents a client session.
type SessionEntry struct {
	ID             int64
	SessionID      string
	Remote         string
	ConnectedAt    time.Time
	DisconnectedAt time.Time // Zero while connected
	Reason         string
	Messages       int
}

// Stats contains aggregated journal statistics.
type Stats struct {
	Total    int
	Failed   int
	ByOpcode map[string]int
	LastAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL DEFAULT '',
			remote TEXT NOT NULL DEFAULT '',
			origin TEXT NOT NULL,
			line TEXT NOT NULL,
			opcode TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_commands_status ON commands(status);
		CREATE INDEX IF NOT EXISTS idx_commands_session ON commands(session_id);

		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			remote TEXT NOT NULL,
			connected_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			disconnected_at DATETIME,
			reason TEXT NOT NULL DEFAULT '',
			messages INTEGER NOT NULL DEFAULT 0
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordCommand records a command line. Returns the ID of the inserted record.
func (s *Store) RecordCommand(e CommandEntry) (int64, error) {
	if e.Status == "" {
		e.Status = StatusOK
	}
	result, err := s.db.Exec(
		`INSERT INTO commands (session_id, remote, origin, line, opcode, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Remote, e.Origin, e.Line, e.Opcode, e.Status, e.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save command: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentCommands retrieves the most recent commands, newest first.
func (s *Store) RecentCommands(limit int) ([]CommandEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, remote, origin, line, opcode, status, error, created_at
		 FROM commands
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query commands: %w", err)
	}
	defer rows.Close()

	var entries []CommandEntry
	for rows.Next() {
		var e CommandEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Remote, &e.Origin, &e.Line,
			&e.Opcode, &e.Status, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ReplayableCommands returns every successfully applied command line in the
// order it was applied. Replayed and exec lines are excluded.
func (s *Store) ReplayableCommands() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT line FROM commands
		 WHERE status = ? AND origin IN ('udp', 'ssh') AND opcode != 'X'
		 ORDER BY id ASC`,
		StatusOK,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replayable commands: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return lines, nil
}

// ClearCommands deletes the whole command journal.
func (s *Store) ClearCommands() error {
	_, err := s.db.Exec("DELETE FROM commands")
	if err != nil {
		return fmt.Errorf("storage: cannot clear commands: %w", err)
	}
	return nil
}

// CommandStats aggregates the journal.
func (s *Store) CommandStats() (*Stats, error) {
	stats := &Stats{ByOpcode: make(map[string]int)}

	var lastAt any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), MAX(created_at)
		 FROM commands`,
		StatusError,
	).Scan(&stats.Total, &stats.Failed, &lastAt)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get command stats: %w", err)
	}
	stats.LastAt = parseTime(lastAt)

	rows, err := s.db.Query(`SELECT opcode, COUNT(*) FROM commands GROUP BY opcode`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get opcode stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op string
		var n int
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats.ByOpcode[op] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// SessionOpened records a new client session.
func (s *Store) SessionOpened(sessionID, remote string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO sessions (session_id, remote) VALUES (?, ?)",
		sessionID, remote,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// SessionClosed marks a session as ended.
func (s *Store) SessionClosed(sessionID, reason string, messages int) error {
	_, err := s.db.Exec(
		`UPDATE sessions
		 SET disconnected_at = CURRENT_TIMESTAMP, reason = ?, messages = ?
		 WHERE session_id = ?`,
		reason, messages, sessionID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot close session: %w", err)
	}
	return nil
}

// RecentSessions retrieves the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, remote, connected_at, disconnected_at, reason, messages
		 FROM sessions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var connectedAt, disconnectedAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Remote, &connectedAt,
			&disconnectedAt, &e.Reason, &e.Messages); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.ConnectedAt = parseTime(connectedAt)
		e.DisconnectedAt = parseTime(disconnectedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// JournalCommand implements host.Journal.
func (s *Store) JournalCommand(rec host.CommandRecord) error {
	status := StatusOK
	if rec.Err != "" {
		status = StatusError
	}
	_, err := s.RecordCommand(CommandEntry{
		SessionID: rec.Session,
		Remote:    rec.Remote,
		Origin:    rec.Origin,
		Line:      rec.Line,
		Opcode:    rec.Opcode,
		Status:    status,
		Error:     rec.Err,
	})
	return err
}

// JournalSession implements host.Journal.
func (s *Store) JournalSession(rec host.SessionRecord) error {
	if rec.Closed {
		return s.SessionClosed(rec.Session, rec.Reason, rec.Messages)
	}
	return s.SessionOpened(rec.Session, rec.Remote)
}

// Ensure Store implements Journal
var _ host.Journal = (*Store)(nil)

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
