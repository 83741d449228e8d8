package store

import (
	"strings"
	"time"

	"github.com/neilberkman/tickr/internal/core/models"
)

// Filter narrows a list of entries. Zero fields match everything.
type Filter struct {
	Tag      string
	Activity string // case-insensitive substring
	Since    time.Time
	Until    time.Time
	Limit    int
}

// Match reports whether e passes every set field
func (f Filter) Match(e models.TimeEntry) bool {
	if f.Tag != "" && !models.HasTag(e.Tags, f.Tag) {
		return false
	}
	if f.Activity != "" && !strings.Contains(strings.ToLower(e.Activity), strings.ToLower(f.Activity)) {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.Timestamp.Before(f.Until) {
		return false
	}
	return true
}

// Apply returns the matching entries in their original order
func (f Filter) Apply(entries []models.TimeEntry) []models.TimeEntry {
	out := []models.TimeEntry{}
	for _, e := range entries {
		if !f.Match(e) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// Filter applies f to the cache
func (s *Store) Filter(f Filter) []models.TimeEntry {
	return f.Apply(s.Entries())
}

// TotalElapsed sums elapsed seconds
func TotalElapsed(entries []models.TimeEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Elapsed
	}
	return total
}
