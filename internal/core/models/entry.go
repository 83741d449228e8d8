package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeEntry is one completed, named, timed interval
type TimeEntry struct {
	ID           string
	Activity     string
	Description  string // empty means none
	Tags         []string
	Elapsed      int64     // seconds, never negative
	Timestamp    time.Time // when the tracked session began
	LastModified time.Time
	Synced       bool
	SyncID       string
	UserID       string
}

// End returns the instant the tracked interval finished
func (e TimeEntry) End() time.Time {
	return e.Timestamp.Add(time.Duration(e.Elapsed) * time.Second)
}

// Validate checks if the entry has required fields
func (e *TimeEntry) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(e.Activity) == "" {
		return errors.New("activity is required")
	}
	if e.Elapsed < 0 {
		return errors.New("elapsed must not be negative")
	}
	return nil
}

// Clone returns a copy that shares no slices with e
func (e TimeEntry) Clone() TimeEntry {
	e.Tags = append([]string(nil), e.Tags...)
	return e
}

// Template is the activity, description and tags copied from a past entry
// to prefill a new session. It never carries elapsed time.
type Template struct {
	Activity    string
	Description string
	Tags        []string
}

// TemplateFrom builds a reseed template from an entry
func TemplateFrom(e TimeEntry) Template {
	return Template{
		Activity:    e.Activity,
		Description: e.Description,
		Tags:        append([]string(nil), e.Tags...),
	}
}

// Completed is what the timer hands over when a session stops
type Completed struct {
	Activity    string
	Description string
	Tags        []string
	Elapsed     int64
	StartedAt   time.Time
}

// Persistable reports whether the session is worth storing
func (c Completed) Persistable() bool {
	return c.Elapsed > 0 && strings.TrimSpace(c.Activity) != ""
}

// NewEntry turns a completed session into an entry with a fresh id
func NewEntry(c Completed, now time.Time) TimeEntry {
	started := c.StartedAt
	if started.IsZero() {
		started = now.Add(-time.Duration(c.Elapsed) * time.Second)
	}
	return TimeEntry{
		ID:           uuid.NewString(),
		Activity:     c.Activity,
		Description:  c.Description,
		Tags:         append([]string(nil), c.Tags...),
		Elapsed:      c.Elapsed,
		Timestamp:    started,
		LastModified: now,
	}
}
