package tui

import (
	"strings"
	"time"

	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/store"
)

// HistoryQuery is a parsed history filter
type HistoryQuery struct {
	Text   string // free text, matched by full-text search or activity substring
	Filter store.Filter
}

// Empty reports whether the query filters anything
func (q HistoryQuery) Empty() bool {
	return q.Text == "" && q.Filter.Tag == "" && q.Filter.Since.IsZero() && q.Filter.Until.IsZero()
}

// ParseHistoryQuery extracts filters from a query string
// Supports:
//   - tag:<name> - entries carrying the tag
//   - date:yesterday, date:2025-06-02 - entries started on that day
//   - after:monday, before:2025-06-01 - explicit ranges
//
// Unparsable dates are dropped; everything else is free text.
func ParseHistoryQuery(query string, now time.Time) HistoryQuery {
	var q HistoryQuery
	var textParts []string

	for _, token := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(token, "tag:"):
			q.Filter.Tag = strings.TrimPrefix(token, "tag:")

		case strings.HasPrefix(token, "date:"):
			if t, ok := parseDate(strings.TrimPrefix(token, "date:"), now); ok {
				day := startOfDay(t)
				q.Filter.Since = day
				q.Filter.Until = day.AddDate(0, 0, 1)
			}

		case strings.HasPrefix(token, "after:"):
			if t, ok := parseDate(strings.TrimPrefix(token, "after:"), now); ok {
				q.Filter.Since = t
			}

		case strings.HasPrefix(token, "before:"):
			if t, ok := parseDate(strings.TrimPrefix(token, "before:"), now); ok {
				q.Filter.Until = t
			}

		default:
			textParts = append(textParts, token)
		}
	}

	q.Text = strings.Join(textParts, " ")
	return q
}

// parseDate accepts the editor's layouts plus natural language. Dashes
// stand in for spaces so "last-week" works inside a single token.
func parseDate(s string, now time.Time) (time.Time, bool) {
	if t, err := editor.ParseTime(s, now); err == nil {
		return t, true
	}
	if t, err := editor.ParseTime(strings.ReplaceAll(s, "-", " "), now); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
