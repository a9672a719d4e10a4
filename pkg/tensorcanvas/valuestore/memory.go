package valuestore

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// MemoryStore is an in-memory value store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]storedValue // runID -> variable -> value
	closed bool
}

type storedValue struct {
	value     backend.Tensor
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates a new in-memory value store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]storedValue),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(runID, variable string, value backend.Tensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if err := validate(value); err != nil {
		return fmt.Errorf("save value: %w", err)
	}

	if m.data[runID] == nil {
		m.data[runID] = make(map[string]storedValue)
	}

	seq := 1
	for _, v := range m.data[runID] {
		if v.sequence >= seq {
			seq = v.sequence + 1
		}
	}

	m.data[runID][variable] = storedValue{
		value:     backend.Tensor{Shape: value.Shape, Data: slices.Clone(value.Data)},
		sequence:  seq,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(runID, variable string) (backend.Tensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return backend.Tensor{}, ErrStoreClosed
	}

	v, ok := m.data[runID][variable]
	if !ok {
		return backend.Tensor{}, ErrNotFound
	}
	return backend.Tensor{Shape: v.value.Shape, Data: slices.Clone(v.value.Data)}, nil
}

// List implements Store.
func (m *MemoryStore) List(runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run, ok := m.data[runID]
	if !ok {
		return nil, nil
	}

	infos := make([]Info, 0, len(run))
	for name, v := range run {
		infos = append(infos, Info{
			RunID:     runID,
			Variable:  name,
			Sequence:  v.sequence,
			Timestamp: v.timestamp,
			Shape:     v.value.Shape,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of stored values across all runs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.data {
		count += len(run)
	}
	return count
}
