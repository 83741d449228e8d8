package remotesync

import (
	"time"

	"github.com/neilberkman/tickr/internal/core/models"
)

// wireEntry is the JSON shape the sync server reads and writes
type wireEntry struct {
	ID           string    `json:"id"`
	Activity     string    `json:"activity"`
	Elapsed      int64     `json:"elapsed"`
	Description  *string   `json:"description"`
	Tags         []string  `json:"tags"`
	Timestamp    time.Time `json:"timestamp"`
	LastModified time.Time `json:"last_modified"`
	Synced       bool      `json:"synced"`
	SyncID       *string   `json:"sync_id"`
	UserID       *string   `json:"user_id"`
}

type syncResponse struct {
	SyncedIDs []string    `json:"synced_ids"`
	Entries   []wireEntry `json:"entries"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toWire(e models.TimeEntry) wireEntry {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return wireEntry{
		ID:           e.ID,
		Activity:     e.Activity,
		Elapsed:      e.Elapsed,
		Description:  optional(e.Description),
		Tags:         tags,
		Timestamp:    e.Timestamp.UTC(),
		LastModified: e.LastModified.UTC(),
		Synced:       e.Synced,
		SyncID:       optional(e.SyncID),
		UserID:       optional(e.UserID),
	}
}

func fromWire(w wireEntry) models.TimeEntry {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.TimeEntry{
		ID:           w.ID,
		Activity:     w.Activity,
		Elapsed:      w.Elapsed,
		Description:  deref(w.Description),
		Tags:         tags,
		Timestamp:    w.Timestamp,
		LastModified: w.LastModified,
		Synced:       w.Synced,
		SyncID:       deref(w.SyncID),
		UserID:       deref(w.UserID),
	}
}
