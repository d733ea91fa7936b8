package storage

import "database/sql"

// migrateV001 creates the initial schema: buckets, events and their indexes.
// Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS buckets (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL DEFAULT '',
			client     TEXT NOT NULL DEFAULT '',
			hostname   TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			bucket_id   TEXT NOT NULL REFERENCES buckets(id) ON DELETE CASCADE,
			ts          TEXT NOT NULL,
			duration    REAL NOT NULL DEFAULT 0,
			app         TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL DEFAULT '',
			embedding   BLOB,
			embed_model TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(bucket_id, ts, app, title)
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_events_ts        ON events(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_events_bucket    ON events(bucket_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_app       ON events(app)`,
		`CREATE INDEX IF NOT EXISTS idx_events_bucket_ts ON events(bucket_id, ts)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
