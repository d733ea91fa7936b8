package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStep is one versioned change to the activity schema.
type schemaStep struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

// schemaSteps lists every migration in the order it must be applied.
var schemaSteps = []schemaStep{
	{version: 1, name: "buckets_and_events", up: migrateV001},
}

// MigrationRunner brings an activity database up to the current schema.
type MigrationRunner struct {
	db    *sql.DB
	steps []schemaStep
}

// NewMigrationRunner creates a runner for db.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db, steps: schemaSteps}
}

// Run applies every pending step, each in its own transaction, and records
// it in schema_migrations.
func (r *MigrationRunner) Run(ctx context.Context) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	done, err := r.applied(ctx)
	if err != nil {
		return err
	}
	for _, step := range r.steps {
		if done[step.version] {
			continue
		}
		if err := r.apply(ctx, step); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", step.version, step.name, err)
		}
	}
	return nil
}

// Pending lists the versions Run would still apply.
func (r *MigrationRunner) Pending(ctx context.Context) ([]int, error) {
	if err := r.prepare(ctx); err != nil {
		return nil, err
	}
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	var pending []int
	for _, step := range r.steps {
		if !done[step.version] {
			pending = append(pending, step.version)
		}
	}
	return pending, nil
}

// Version returns the highest applied schema version, or 0 for a fresh database.
func (r *MigrationRunner) Version(ctx context.Context) (int, error) {
	var v sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// prepare sets connection pragmas and creates the tracking table.
func (r *MigrationRunner) prepare(ctx context.Context) error {
	// In-memory databases answer "memory" here; that is not an error.
	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	// Bucket deletes cascade to events.
	if _, err := r.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (r *MigrationRunner) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, step schemaStep) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := step.up(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		step.version, step.name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
