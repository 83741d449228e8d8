// Package store caches time entries in front of a persistence backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/neilberkman/tickr/internal/core/models"
)

var (
	// ErrBusy is returned when a delete is already in flight
	ErrBusy = errors.New("another delete is in progress")
	// ErrNotFound is returned when the backend has no entry with the id
	ErrNotFound = errors.New("entry not found")
	// ErrNotPersistable is returned by Append for zero-length or unnamed sessions
	ErrNotPersistable = errors.New("session has no elapsed time or activity")
)

// Fields is the full replacement payload for an edit
type Fields struct {
	Activity    string
	Description string
	Tags        []string
	Elapsed     int64
	Timestamp   time.Time
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store's logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the in-memory list of entries, newest first
type Store struct {
	backend Backend
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	entries  []models.TimeEntry
	deleting bool

	group singleflight.Group
}

// New creates an empty store; call List to load it
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     zerolog.Nop(),
		now:     time.Now,
		entries: []models.TimeEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List re-fetches from the backend. On failure the previous cache is kept
// and returned together with the error.
func (s *Store) List(ctx context.Context) ([]models.TimeEntry, error) {
	_, err, _ := s.group.Do("list", func() (any, error) {
		entries, err := s.backend.GetAllTimeEntries(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to load time entries")
			return nil, err
		}
		if entries == nil {
			entries = []models.TimeEntry{}
		}
		s.mu.Lock()
		s.entries = cloneAll(entries)
		s.mu.Unlock()
		return nil, nil
	})
	return s.Entries(), err
}

// Entries returns a copy of the cache without fetching
func (s *Store) Entries() []models.TimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.entries)
}

// Get looks up an entry in the cache
func (s *Store) Get(id string) (models.TimeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return models.TimeEntry{}, false
}

// Append persists a completed session and refreshes the cache. Sessions
// with no elapsed time or no activity are dropped with ErrNotPersistable.
func (s *Store) Append(ctx context.Context, c models.Completed) (models.TimeEntry, error) {
	if !c.Persistable() {
		return models.TimeEntry{}, ErrNotPersistable
	}

	entry := models.NewEntry(c, s.now())
	if err := s.backend.SaveTimeEntry(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("activity", entry.Activity).Msg("failed to save time entry")
		return models.TimeEntry{}, fmt.Errorf("save entry: %w", err)
	}
	s.log.Debug().Str("entry_id", entry.ID).Int64("elapsed", entry.Elapsed).Msg("saved time entry")

	if _, err := s.List(ctx); err != nil {
		return entry, fmt.Errorf("refresh after save: %w", err)
	}
	return entry, nil
}

// Import saves an already-built entry as-is (manual entries, sync pulls)
func (s *Store) Import(ctx context.Context, entry models.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := s.backend.SaveTimeEntry(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to import time entry")
		return fmt.Errorf("save entry: %w", err)
	}
	_, err := s.List(ctx)
	return err
}

// Remove deletes an entry. Only one delete may be outstanding at a time;
// a second call returns ErrBusy without reaching the backend.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.deleting {
		s.mu.Unlock()
		return ErrBusy
	}
	s.deleting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.deleting = false
		s.mu.Unlock()
	}()

	ok, err := s.backend.DeleteTimeEntry(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("entry_id", id).Msg("failed to delete time entry")
		return fmt.Errorf("delete entry: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	_, err = s.List(ctx)
	return err
}

// Deleting reports whether a delete is in flight
func (s *Store) Deleting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deleting
}

// Update sends the full replacement for id and refreshes the cache
func (s *Store) Update(ctx context.Context, id string, f Fields) error {
	if f.Elapsed < 0 {
		f.Elapsed = 0
	}
	entry := models.TimeEntry{
		ID:           id,
		Activity:     strings.TrimSpace(f.Activity),
		Description:  strings.TrimSpace(f.Description),
		Tags:         append([]string{}, f.Tags...),
		Elapsed:      f.Elapsed,
		Timestamp:    f.Timestamp,
		LastModified: s.now(),
	}
	if prev, ok := s.Get(id); ok {
		entry.SyncID = prev.SyncID
		entry.UserID = prev.UserID
	}

	ok, err := s.backend.UpdateTimeEntry(ctx, entry)
	if err != nil {
		s.log.Error().Err(err).Str("entry_id", id).Msg("failed to update time entry")
		return fmt.Errorf("update entry: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	_, err = s.List(ctx)
	return err
}
