package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/tickr/internal/core/db"
	"github.com/neilberkman/tickr/internal/core/models"
)

var now = time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "tickr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	entries := []models.TimeEntry{
		{ID: "aaa111", Activity: "Code review", Description: "pull request 42", Tags: []string{"work"}, Elapsed: 1800, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "bbb222", Activity: "Gardening", Tags: []string{"home"}, Elapsed: 3600, Timestamp: now.Add(-26 * time.Hour)},
		{ID: "bbb333", Activity: "Writing docs", Tags: []string{"work"}, Elapsed: 600, Timestamp: now.Add(-72 * time.Hour)},
	}
	for _, e := range entries {
		require.NoError(t, database.SaveTimeEntry(ctx, e))
	}
	return database
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestListTimeEntries(t *testing.T) {
	handler := makeListTimeEntriesHandler(newTestDB(t))

	text, isErr := call(t, handler, map[string]any{})
	require.False(t, isErr, text)
	var out struct {
		Entries []EntryDetail `json:"entries"`
		Total   string        `json:"total_tracked"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Entries, 3)
	assert.Equal(t, "aaa111", out.Entries[0].ID)
	assert.Equal(t, "00:30:00", out.Entries[0].Duration)
	assert.Equal(t, "1h 40m", out.Total)

	text, _ = call(t, handler, map[string]any{"tag": "work", "limit": 1})
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "aaa111", out.Entries[0].ID)

	text, _ = call(t, handler, map[string]any{"query": "garden"})
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "bbb222", out.Entries[0].ID)
}

func TestListTimeEntriesBadDate(t *testing.T) {
	handler := makeListTimeEntriesHandler(newTestDB(t))
	text, isErr := call(t, handler, map[string]any{"since": "not a date"})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid since")
}

func TestGetTimeEntry(t *testing.T) {
	handler := makeGetTimeEntryHandler(newTestDB(t))

	text, isErr := call(t, handler, map[string]any{"id": "aaa"})
	require.False(t, isErr, text)
	var e EntryDetail
	require.NoError(t, json.Unmarshal([]byte(text), &e))
	assert.Equal(t, "Code review", e.Activity)
	assert.Equal(t, "pull request 42", e.Description)
	assert.Equal(t, []string{"work"}, e.Tags)

	text, isErr = call(t, handler, map[string]any{"id": "bbb"})
	assert.True(t, isErr)
	assert.Contains(t, text, "ambiguous")

	_, isErr = call(t, handler, map[string]any{"id": "zzz"})
	assert.True(t, isErr)

	_, isErr = call(t, handler, map[string]any{})
	assert.True(t, isErr)
}

func TestTrackingStats(t *testing.T) {
	handler := makeTrackingStatsHandler(newTestDB(t), func() time.Time { return now })

	text, isErr := call(t, handler, map[string]any{})
	require.False(t, isErr, text)
	var s StatsSummary
	require.NoError(t, json.Unmarshal([]byte(text), &s))
	assert.Equal(t, 3, s.TotalEntries)
	assert.Equal(t, "1h 40m", s.TotalTracked)
	assert.Equal(t, "30m 00s", s.Today)
	assert.Equal(t, "Gardening", s.TopActivity)
	assert.Equal(t, "work", s.TopTag)
	assert.Equal(t, 3, s.UnsyncedEntries)
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(newTestDB(t))
	tools := s.ListTools()
	for _, name := range []string{"list_time_entries", "get_time_entry", "tracking_stats"} {
		assert.Contains(t, tools, name)
	}
}
