package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/neilberkman/tickr/internal/core/models"
)

const entryColumns = `id, activity, elapsed, description, timestamp, tags, last_modified, synced, sync_id, user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.TimeEntry, error) {
	var (
		e                        models.TimeEntry
		description, syncID, uid sql.NullString
		tagsJSON, lastModified   sql.NullString
		timestamp                string
	)
	err := row.Scan(&e.ID, &e.Activity, &e.Elapsed, &description, &timestamp,
		&tagsJSON, &lastModified, &e.Synced, &syncID, &uid)
	if err != nil {
		return models.TimeEntry{}, err
	}

	e.Description = description.String
	e.SyncID = syncID.String
	e.UserID = uid.String
	e.Timestamp = parseTime(timestamp)
	e.LastModified = parseTime(lastModified.String)
	e.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		// Unreadable tags degrade to none rather than hiding the entry
		_ = json.Unmarshal([]byte(tagsJSON.String), &e.Tags)
	}
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func (db *DB) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimeEntry, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveTimeEntry inserts an entry or replaces the row with the same id
func (db *DB) SaveTimeEntry(ctx context.Context, e models.TimeEntry) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	if e.LastModified.IsZero() {
		e.LastModified = db.now()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO time_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			activity = excluded.activity,
			elapsed = excluded.elapsed,
			description = excluded.description,
			timestamp = excluded.timestamp,
			tags = excluded.tags,
			last_modified = excluded.last_modified,
			synced = excluded.synced,
			sync_id = excluded.sync_id,
			user_id = excluded.user_id
	`, e.ID, e.Activity, e.Elapsed, nullString(e.Description), formatTime(e.Timestamp),
		tags, formatTime(e.LastModified), e.Synced, nullString(e.SyncID), nullString(e.UserID))
	if err != nil {
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	return nil
}

// GetAllTimeEntries returns every entry, newest session first
func (db *DB) GetAllTimeEntries(ctx context.Context) ([]models.TimeEntry, error) {
	return db.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM time_entries
		ORDER BY julianday(timestamp) DESC, rowid DESC
	`)
}

// GetTimeEntry returns one entry, or nil when the id is unknown
func (db *DB) GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByPrefix resolves a short id (as printed by the CLI) to full entries
func (db *DB) FindByPrefix(ctx context.Context, prefix string) ([]models.TimeEntry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	return db.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM time_entries
		WHERE id LIKE ? || '%'
		ORDER BY julianday(timestamp) DESC
		LIMIT 10
	`, prefix)
}

// DeleteTimeEntry removes an entry; false means nothing matched
func (db *DB) DeleteTimeEntry(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateTimeEntry replaces every editable field. Local edits always mark
// the row as unsynced.
func (db *DB) UpdateTimeEntry(ctx context.Context, e models.TimeEntry) (bool, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return false, err
	}
	if e.LastModified.IsZero() {
		e.LastModified = db.now()
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE time_entries
		SET activity = ?, elapsed = ?, description = ?, timestamp = ?, tags = ?,
			last_modified = ?, synced = 0
		WHERE id = ?
	`, e.Activity, e.Elapsed, nullString(e.Description), formatTime(e.Timestamp), tags,
		formatTime(e.LastModified), e.ID)
	if err != nil {
		return false, fmt.Errorf("update entry %s: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUnsyncedEntries returns entries not yet pushed to the sync server
func (db *DB) GetUnsyncedEntries(ctx context.Context) ([]models.TimeEntry, error) {
	return db.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM time_entries
		WHERE synced = 0
		ORDER BY julianday(last_modified) DESC
	`)
}

// MarkEntrySynced flags an entry as pushed and records the server's id for it
func (db *DB) MarkEntrySynced(ctx context.Context, id, syncID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE time_entries SET synced = 1, sync_id = COALESCE(?, sync_id) WHERE id = ?
	`, nullString(syncID), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SearchTimeEntries matches activity and description through FTS
func (db *DB) SearchTimeEntries(ctx context.Context, query string, limit int) ([]models.TimeEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.TimeEntry{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	return db.queryEntries(ctx, `
		SELECT `+prefixColumns("e", entryColumns)+`
		FROM time_entries_fts
		JOIN time_entries e ON e.rowid = time_entries_fts.rowid
		WHERE time_entries_fts MATCH ?
		ORDER BY bm25(time_entries_fts), julianday(e.timestamp) DESC
		LIMIT ?
	`, ftsQuery(query), limit)
}

// ftsQuery quotes each term so punctuation in user input is not parsed as FTS syntax.
// Terms are prefix matched.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		parts = append(parts, `"`+f+`"*`)
	}
	return strings.Join(parts, " ")
}

func prefixColumns(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
