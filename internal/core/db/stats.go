package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Stats represents database statistics
type Stats struct {
	TotalEntries      int
	TotalSeconds      int64
	UnsyncedEntries   int
	OldestEntry       time.Time
	NewestEntry       time.Time
	TopActivity       string
	TopActivitySecs   int64
	TopTag            string
	TopTagCount       int
	TodaySeconds      int64
	LastSevenDaysSecs int64
}

// GetStats returns tracking statistics. today is the local start of the current day.
func (db *DB) GetStats(ctx context.Context, today time.Time) (*Stats, error) {
	stats := &Stats{}

	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(elapsed), 0),
			COALESCE(SUM(CASE WHEN synced = 0 THEN 1 ELSE 0 END), 0)
		FROM time_entries
	`).Scan(&stats.TotalEntries, &stats.TotalSeconds, &stats.UnsyncedEntries)
	if err != nil {
		return nil, err
	}

	if stats.TotalEntries == 0 {
		return stats, nil
	}

	// Date range
	var oldest, newest sql.NullString
	err = db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT timestamp FROM time_entries ORDER BY julianday(timestamp) ASC LIMIT 1),
			(SELECT timestamp FROM time_entries ORDER BY julianday(timestamp) DESC LIMIT 1)
	`).Scan(&oldest, &newest)
	if err != nil {
		return nil, err
	}
	stats.OldestEntry = parseTime(oldest.String)
	stats.NewestEntry = parseTime(newest.String)

	// Activity with the most tracked time
	var topActivity sql.NullString
	err = db.conn.QueryRowContext(ctx, `
		SELECT activity, SUM(elapsed) AS total
		FROM time_entries
		GROUP BY activity
		ORDER BY total DESC
		LIMIT 1
	`).Scan(&topActivity, &stats.TopActivitySecs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	stats.TopActivity = topActivity.String

	// Most used tag
	var topTag sql.NullString
	err = db.conn.QueryRowContext(ctx, `
		SELECT tag.value, COUNT(*) AS uses
		FROM time_entries, json_each(time_entries.tags) AS tag
		WHERE json_valid(time_entries.tags)
		GROUP BY tag.value
		ORDER BY uses DESC, tag.value ASC
		LIMIT 1
	`).Scan(&topTag, &stats.TopTagCount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	stats.TopTag = topTag.String

	err = db.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) THEN elapsed ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) THEN elapsed ELSE 0 END), 0)
		FROM time_entries
	`, formatTime(today), formatTime(today.AddDate(0, 0, -6))).Scan(&stats.TodaySeconds, &stats.LastSevenDaysSecs)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
