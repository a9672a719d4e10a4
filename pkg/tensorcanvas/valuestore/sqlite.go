package valuestore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists run values to SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite value store.
// The path should be a file path (e.g., "./values.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each :memory: connection is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS run_values (
			run_id TEXT NOT NULL,
			variable TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			rows INTEGER NOT NULL,
			cols INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (run_id, variable)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_run_values_run_id
		ON run_values(run_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(runID, variable string, value backend.Tensor) error {
	data, err := encode(value)
	if err != nil {
		return fmt.Errorf("save value: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err = s.db.Exec(`
		INSERT INTO run_values (run_id, variable, sequence, timestamp, rows, cols, data)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(sequence) FROM run_values WHERE run_id = ?), 0) + 1,
			?, ?, ?, ?
		)
		ON CONFLICT(run_id, variable) DO UPDATE SET
			sequence = (SELECT MAX(sequence) FROM run_values WHERE run_id = excluded.run_id) + 1,
			timestamp = excluded.timestamp,
			rows = excluded.rows,
			cols = excluded.cols,
			data = excluded.data
	`, runID, variable, runID, time.Now().UTC().Format(time.RFC3339Nano),
		value.Shape.Rows, value.Shape.Cols, data)
	if err != nil {
		return fmt.Errorf("save value: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(runID, variable string) (backend.Tensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return backend.Tensor{}, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM run_values
		WHERE run_id = ? AND variable = ?
	`, runID, variable).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.Tensor{}, ErrNotFound
	}
	if err != nil {
		return backend.Tensor{}, fmt.Errorf("load value: %w", err)
	}
	return decode(data)
}

// List implements Store.
func (s *SQLiteStore) List(runID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT variable, sequence, timestamp, rows, cols
		FROM run_values
		WHERE run_id = ?
		ORDER BY sequence
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list values: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var timestamp string
		if err := rows.Scan(&info.Variable, &info.Sequence, &timestamp,
			&info.Shape.Rows, &info.Shape.Cols); err != nil {
			return nil, fmt.Errorf("scan value info: %w", err)
		}
		info.RunID = runID
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}
	return infos, nil
}

// DeleteRun implements Store.
func (s *SQLiteStore) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM run_values WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run values: %w", err)
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
