package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/tickr/internal/core/config"
	"github.com/neilberkman/tickr/internal/core/models"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func sampleEntries() []models.TimeEntry {
	return []models.TimeEntry{
		{ID: "3", Activity: "Review & merge", Tags: []string{"work", "go"}, Elapsed: 1800, Timestamp: day.Add(14 * time.Hour)},
		{ID: "2", Activity: "Writing", Description: "chapter 2", Tags: []string{}, Elapsed: 3600, Timestamp: day.Add(9 * time.Hour)},
		{ID: "1", Activity: "Reading", Tags: []string{}, Elapsed: 125, Timestamp: day.AddDate(0, 0, -1).Add(20 * time.Hour)},
	}
}

func TestMarkdownDefaultTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := Markdown(&buf, sampleEntries(), Options{
		Template: config.DefaultExportTemplate,
		Location: time.UTC,
		Now:      day.Add(18 * time.Hour),
	})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "Generated 2025-06-02 18:00. 3 entries, 1h 32m tracked.")
	assert.Contains(t, out, "## Monday, 2025-06-02 (1h 30m)")
	assert.Contains(t, out, "## Sunday, 2025-06-01 (2m 05s)")
	assert.Contains(t, out, "- 14:00-14:30 **Review & merge** (00:30:00) [work, go]")
	assert.Contains(t, out, "- 09:00-10:00 **Writing** (01:00:00): chapter 2")
	assert.Contains(t, out, "- 20:00-20:02 **Reading** (00:02:05)\n")

	// Days keep the order of the input
	assert.Less(t, strings.Index(out, "2025-06-02 ("), strings.Index(out, "2025-06-01 ("))
}

func TestMarkdownCustomTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := Markdown(&buf, sampleEntries(), Options{
		Template: "{{#days}}{{#entries}}{{id}};{{/entries}}{{/days}}",
		Location: time.UTC,
	})
	require.NoError(t, err)
	assert.Equal(t, "3;2;1;", buf.String())
}

func TestMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, nil, Options{Template: config.DefaultExportTemplate, Location: time.UTC}))
	assert.Contains(t, buf.String(), "0 entries")
	assert.NotContains(t, buf.String(), "##")
}

func TestMarkdownBadTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := Markdown(&buf, nil, Options{Template: "{{#days}}"})
	assert.Error(t, err)
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleEntries()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"3", "Review & merge", "", "work, go", "1800",
		"2025-06-02T14:00:00Z", "2025-06-02T14:30:00Z"}, rows[1])
	assert.Equal(t, "chapter 2", rows[2][2])
}

func TestReadCSVReadsWhatCSVWrites(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleEntries()))

	now := day.Add(24 * time.Hour)
	got, err := ReadCSV(&buf, now)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "Review & merge", got[0].Activity)
	assert.Equal(t, []string{"work", "go"}, got[0].Tags)
	assert.Equal(t, int64(1800), got[0].Elapsed)
	assert.True(t, got[0].Timestamp.Equal(day.Add(14*time.Hour)))
	assert.Equal(t, now, got[0].LastModified)
	assert.False(t, got[0].Synced)
	assert.Equal(t, "chapter 2", got[1].Description)
	assert.Empty(t, got[2].Tags)
}

func TestReadCSVMatchesColumnsByName(t *testing.T) {
	in := "start,elapsed,activity\n2025-06-02T09:00:00Z,60,Standup\n"
	got, err := ReadCSV(strings.NewReader(in), day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID, "rows without an id get one")
	assert.Equal(t, "Standup", got[0].Activity)
	assert.Equal(t, int64(60), got[0].Elapsed)
}

func TestReadCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing column", "activity,elapsed\nA,1\n", `missing "start" column`},
		{"bad elapsed", "activity,elapsed,start\nA,ten,2025-06-02T09:00:00Z\n", "line 2: invalid elapsed"},
		{"negative elapsed", "activity,elapsed,start\nA,-5,2025-06-02T09:00:00Z\n", "line 2: invalid elapsed"},
		{"bad start", "activity,elapsed,start\nA,5,yesterday\n", "line 2: invalid start"},
		{"blank activity", "activity,elapsed,start\nA,5,2025-06-02T09:00:00Z\n ,5,2025-06-02T09:00:00Z\n", "line 3: activity is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), day)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""), day)
	require.NoError(t, err)
	assert.Empty(t, got)
}
