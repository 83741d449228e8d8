package store

import (
	"context"
	"sync"

	"github.com/neilberkman/tickr/internal/core/models"
)

// Backend is the persistence command layer behind the store.
// *db.DB satisfies it.
type Backend interface {
	SaveTimeEntry(ctx context.Context, entry models.TimeEntry) error
	GetAllTimeEntries(ctx context.Context) ([]models.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) (bool, error)
	UpdateTimeEntry(ctx context.Context, entry models.TimeEntry) (bool, error)
}

// MemoryBackend keeps entries in process memory, newest first
type MemoryBackend struct {
	mu      sync.Mutex
	entries []models.TimeEntry
}

// NewMemoryBackend creates a backend seeded with entries (kept in the given order)
func NewMemoryBackend(seed ...models.TimeEntry) *MemoryBackend {
	m := &MemoryBackend{}
	for _, e := range seed {
		m.entries = append(m.entries, e.Clone())
	}
	return m
}

// SaveTimeEntry inserts at the head, or replaces in place when the id exists
func (m *MemoryBackend) SaveTimeEntry(_ context.Context, entry models.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = entry.Clone()
			return nil
		}
	}
	m.entries = append([]models.TimeEntry{entry.Clone()}, m.entries...)
	return nil
}

func (m *MemoryBackend) GetAllTimeEntries(_ context.Context) ([]models.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.entries), nil
}

func (m *MemoryBackend) DeleteTimeEntry(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryBackend) UpdateTimeEntry(_ context.Context, entry models.TimeEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			entry.Synced = false
			m.entries[i] = entry.Clone()
			return true, nil
		}
	}
	return false, nil
}

func cloneAll(entries []models.TimeEntry) []models.TimeEntry {
	out := make([]models.TimeEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
