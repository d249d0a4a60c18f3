package db

import "github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"

// schema is the SQL schema for the run history database.
const schema = `
-- Optimization runs
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    topic TEXT NOT NULL,
    locale TEXT NOT NULL DEFAULT 'en',
    iterations INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'running',
    best_score REAL NOT NULL DEFAULT 0,
    best_prompts TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    finished_at DATETIME
);

-- Per-iteration records, one row per (run, index)
CREATE TABLE IF NOT EXISTS iterations (
    run_id TEXT NOT NULL,
    idx INTEGER NOT NULL,
    score REAL NOT NULL,
    delta REAL NOT NULL DEFAULT 0,
    parsed INTEGER NOT NULL DEFAULT 1,
    feedback TEXT NOT NULL,
    artifact TEXT NOT NULL,
    prompts TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (run_id, idx),
    FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Migrate runs all database migrations to ensure the schema is up to date.
func (d *DB) Migrate() error {
	if _, err := d.conn.Exec(schema); err != nil {
		return err
	}
	return d.runMigrations()
}

// runMigrations applies incremental schema changes for existing databases.
func (d *DB) runMigrations() error {
	// Migration: record where each run wrote its files
	if exists, err := d.columnExists("runs", "output_dir"); err != nil {
		return err
	} else if !exists {
		if _, err := d.conn.Exec(`
			ALTER TABLE runs ADD COLUMN output_dir TEXT NOT NULL DEFAULT '';
		`); err != nil {
			return err
		}
	}

	return nil
}

// columnExists checks if a column exists in the specified table.
func (d *DB) columnExists(table, column string) (bool, error) {
	rows, err := d.conn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "columnExists", "error", closeErr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
