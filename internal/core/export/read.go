package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neilberkman/tickr/internal/core/models"
)

// ReadCSV parses rows written by CSV. Columns are matched by header name, so
// hand-edited files may reorder or drop the optional ones (id, description,
// tags, end). Rows without an id get a fresh one.
func ReadCSV(r io.Reader, now time.Time) ([]models.TimeEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"activity", "elapsed", "start"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []models.TimeEntry
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		elapsed, err := strconv.ParseInt(field(row, "elapsed"), 10, 64)
		if err != nil || elapsed < 0 {
			return nil, fmt.Errorf("line %d: invalid elapsed %q", line, field(row, "elapsed"))
		}
		start, err := time.Parse(time.RFC3339, field(row, "start"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid start %q", line, field(row, "start"))
		}

		e := models.TimeEntry{
			ID:           field(row, "id"),
			Activity:     field(row, "activity"),
			Description:  field(row, "description"),
			Tags:         models.ParseTags(field(row, "tags")),
			Elapsed:      elapsed,
			Timestamp:    start,
			LastModified: now,
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
