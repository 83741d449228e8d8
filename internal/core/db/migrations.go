package db

import (
	"fmt"
)

// runMigrations applies database migrations for existing databases
func (db *DB) runMigrations() error {
	// Migration 1: Add sync bookkeeping columns to time_entries
	if err := db.migration001AddSyncColumns(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}

	// Migration 2: Backfill last_modified for rows written before it existed
	if err := db.migration002BackfillLastModified(); err != nil {
		return fmt.Errorf("migration 002: %w", err)
	}

	// Migration 3: Normalize missing tags to an empty JSON array
	if err := db.migration003NormalizeTags(); err != nil {
		return fmt.Errorf("migration 003: %w", err)
	}

	// Migration 4: Index rows that predate the FTS table
	if err := db.migration004RebuildFTS(); err != nil {
		return fmt.Errorf("migration 004: %w", err)
	}

	return nil
}

func (db *DB) hasColumn(table, column string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// migration001AddSyncColumns adds last_modified, synced, sync_id and user_id
func (db *DB) migration001AddSyncColumns() error {
	columns := []struct {
		name string
		ddl  string
	}{
		{"last_modified", "ALTER TABLE time_entries ADD COLUMN last_modified TEXT"},
		{"synced", "ALTER TABLE time_entries ADD COLUMN synced INTEGER NOT NULL DEFAULT 0"},
		{"sync_id", "ALTER TABLE time_entries ADD COLUMN sync_id TEXT"},
		{"user_id", "ALTER TABLE time_entries ADD COLUMN user_id TEXT"},
	}

	for _, col := range columns {
		exists, err := db.hasColumn("time_entries", col.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.conn.Exec(col.ddl); err != nil {
			return fmt.Errorf("add %s column: %w", col.name, err)
		}
	}

	// The synced column only exists after the ALTERs above
	_, err := db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_time_entries_synced ON time_entries(synced);`)
	return err
}

func (db *DB) migration002BackfillLastModified() error {
	_, err := db.conn.Exec(`
		UPDATE time_entries
		SET last_modified = timestamp
		WHERE last_modified IS NULL OR last_modified = ''
	`)
	return err
}

func (db *DB) migration003NormalizeTags() error {
	_, err := db.conn.Exec(`
		UPDATE time_entries
		SET tags = '[]'
		WHERE tags IS NULL OR TRIM(tags) = ''
	`)
	return err
}

func (db *DB) migration004RebuildFTS() error {
	var entries, indexed int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM time_entries`).Scan(&entries); err != nil {
		return err
	}
	// The docsize shadow table holds one row per indexed entry; the FTS table
	// itself would read through to time_entries
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM time_entries_fts_docsize`).Scan(&indexed); err != nil {
		return err
	}
	// A freshly created index may have seen trigger deletes from the
	// migrations above, so it is rebuilt even when the counts agree
	if entries == indexed && !db.ftsCreated {
		return nil
	}

	_, err := db.conn.Exec(`INSERT INTO time_entries_fts(time_entries_fts) VALUES ('rebuild')`)
	return err
}

// dropFTSWithoutTags removes a search index built before tags were indexed,
// along with its triggers, so ftsSchema can recreate both. Migration 4 then
// refills it.
func (db *DB) dropFTSWithoutTags() error {
	exists, err := db.hasFTS()
	if err != nil || !exists {
		return err
	}
	indexed, err := db.hasColumn("time_entries_fts", "tags")
	if err != nil || indexed {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range []string{
		`DROP TRIGGER IF EXISTS time_entries_ai`,
		`DROP TRIGGER IF EXISTS time_entries_ad`,
		`DROP TRIGGER IF EXISTS time_entries_au`,
		`DROP TABLE time_entries_fts`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (db *DB) hasFTS() (bool, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'time_entries_fts'`,
	).Scan(&n)
	return n > 0, err
}
