package db

import "fmt"

func (db *DB) initSchema() error {
	schema := `
	-- Time entries, newest first by timestamp (session start)
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		activity TEXT NOT NULL,
		elapsed INTEGER NOT NULL,
		description TEXT,
		timestamp TEXT NOT NULL,
		tags TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_timestamp ON time_entries(timestamp);

	-- Local accounts for the built-in auth provider
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		email_verified BOOLEAN NOT NULL DEFAULT 0,
		password_hash TEXT NOT NULL,
		image TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		ip_address TEXT,
		user_agent TEXT,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_auth_sessions_user_id ON auth_sessions(user_id);

	`

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	if err := db.dropFTSWithoutTags(); err != nil {
		return fmt.Errorf("drop stale search index: %w", err)
	}
	exists, err := db.hasFTS()
	if err != nil {
		return err
	}
	db.ftsCreated = !exists
	_, err = db.conn.Exec(ftsSchema)
	return err
}

// ftsSchema indexes activity, description and the JSON tags text; the
// tokenizer splits ["a","b"] into its tag words
const ftsSchema = `
	CREATE VIRTUAL TABLE IF NOT EXISTS time_entries_fts USING fts5(
		activity,
		description,
		tags,
		content=time_entries,
		content_rowid=rowid,
		tokenize='porter unicode61'
	);

	CREATE TRIGGER IF NOT EXISTS time_entries_ai AFTER INSERT ON time_entries BEGIN
		INSERT INTO time_entries_fts(rowid, activity, description, tags)
		VALUES (new.rowid, new.activity, COALESCE(new.description, ''), COALESCE(new.tags, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS time_entries_ad AFTER DELETE ON time_entries BEGIN
		INSERT INTO time_entries_fts(time_entries_fts, rowid, activity, description, tags)
		VALUES ('delete', old.rowid, old.activity, COALESCE(old.description, ''), COALESCE(old.tags, ''));
	END;

	CREATE TRIGGER IF NOT EXISTS time_entries_au AFTER UPDATE ON time_entries BEGIN
		INSERT INTO time_entries_fts(time_entries_fts, rowid, activity, description, tags)
		VALUES ('delete', old.rowid, old.activity, COALESCE(old.description, ''), COALESCE(old.tags, ''));
		INSERT INTO time_entries_fts(rowid, activity, description, tags)
		VALUES (new.rowid, new.activity, COALESCE(new.description, ''), COALESCE(new.tags, ''));
	END;
`
