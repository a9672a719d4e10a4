// Package valuestore keeps tensor values produced by canvas runs so a
// selected port can be inspected after the fact.
package valuestore

import (
	"errors"
	"time"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// Store persists run values keyed by (run ID, variable name).
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a value for a variable of a run.
	// Overwrites if a value for (runID, variable) already exists.
	Save(runID, variable string, value backend.Tensor) error

	// Load retrieves a value.
	// Returns ErrNotFound if the value doesn't exist.
	Load(runID, variable string) (backend.Tensor, error)

	// List returns metadata for all values of a run, ordered by sequence.
	// Returns empty slice (not error) if the run saved nothing.
	List(runID string) ([]Info, error)

	// DeleteRun removes all values for a run.
	// Returns nil if the run has no values.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without decoding the value.
type Info struct {
	RunID     string
	Variable  string
	Sequence  int
	Timestamp time.Time
	Shape     backend.Shape
}

// Sentinel errors for value store operations.
var (
	// ErrNotFound indicates a value doesn't exist.
	ErrNotFound = errors.New("value not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("value store closed")
)

// Open returns a SQLite store for a non-empty DSN and a memory store otherwise.
func Open(dsn string) (Store, error) {
	if dsn == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(dsn)
}
