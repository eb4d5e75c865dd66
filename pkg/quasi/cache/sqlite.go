package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists rendered output to SQLite so repeated CLI runs can
// reuse it.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a cache database at path.
// Use ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS renders (
			key TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			created TEXT NOT NULL,
			output BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	output := e.Output
	if output == nil {
		output = []byte{}
	}

	_, err := s.db.Exec(`
		INSERT INTO renders (key, mode, sequence, created, output)
		VALUES (?, ?, COALESCE((SELECT MAX(sequence) FROM renders), 0) + 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			mode = excluded.mode,
			sequence = excluded.sequence,
			created = excluded.created,
			output = excluded.output
	`, key, e.Mode, time.Now().UTC().Format(time.RFC3339Nano), output)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	var e Entry
	var created string
	err := s.db.QueryRow(`
		SELECT mode, created, output FROM renders WHERE key = ?
	`, key).Scan(&e.Mode, &created, &e.Output)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get entry: %w", err)
	}
	e.Created, _ = time.Parse(time.RFC3339Nano, created)
	return e, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT key, mode, sequence, created, LENGTH(output)
		FROM renders
		ORDER BY sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var created string
		if err := rows.Scan(&info.Key, &info.Mode, &info.Sequence, &created, &info.Size); err != nil {
			return nil, fmt.Errorf("scan entry info: %w", err)
		}
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM renders WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM renders`); err != nil {
		return fmt.Errorf("purge entries: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
