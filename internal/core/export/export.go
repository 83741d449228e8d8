// Package export writes time entries as a Markdown report or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

// Formats accepted by the export command
const (
	FormatMarkdown = "md"
	FormatCSV      = "csv"
)

// CSVHeader is the first row written by CSV
var CSVHeader = []string{"id", "activity", "description", "tags", "elapsed", "start", "end"}

// Options controls report rendering
type Options struct {
	Template string
	Location *time.Location
	Now      time.Time
}

// Markdown renders entries grouped by local day, in the order given,
// through a mustache template
func Markdown(w io.Writer, entries []models.TimeEntry, opts Options) error {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	days := []map[string]any{}
	var (
		date     string
		dayItems []map[string]any
		dayTotal int64
		total    int64
	)
	flush := func() {
		if dayItems == nil {
			return
		}
		days = append(days, map[string]any{
			"date":    date,
			"total":   timefmt.Human(dayTotal),
			"entries": dayItems,
		})
	}

	for _, e := range entries {
		start := e.Timestamp.In(loc)
		if d := start.Format("Monday, 2006-01-02"); dayItems == nil || d != date {
			flush()
			date, dayItems, dayTotal = d, []map[string]any{}, 0
		}
		dayItems = append(dayItems, entryData(e, loc))
		dayTotal += e.Elapsed
		total += e.Elapsed
	}
	flush()

	data := map[string]any{
		"generated": now.In(loc).Format("2006-01-02 15:04"),
		"count":     len(entries),
		"total":     timefmt.Human(total),
		"days":      days,
	}

	out, err := mustache.Render(opts.Template, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// entryData leaves description and tags out when empty so they act as false sections
func entryData(e models.TimeEntry, loc *time.Location) map[string]any {
	m := map[string]any{
		"id":       e.ID,
		"activity": e.Activity,
		"start":    e.Timestamp.In(loc).Format("15:04"),
		"end":      e.End().In(loc).Format("15:04"),
		"duration": timefmt.Format(e.Elapsed),
		"elapsed":  e.Elapsed,
	}
	if e.Description != "" {
		m["description"] = e.Description
	}
	if len(e.Tags) > 0 {
		m["tags"] = models.JoinTags(e.Tags)
	}
	return m
}

// CSV writes one row per entry with RFC 3339 start and end times
func CSV(w io.Writer, entries []models.TimeEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.ID,
			e.Activity,
			e.Description,
			models.JoinTags(e.Tags),
			strconv.FormatInt(e.Elapsed, 10),
			e.Timestamp.Format(time.RFC3339),
			e.End().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
