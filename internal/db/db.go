// Package db stores the history of optimization runs in sqlite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// ErrNotFound is returned when a requested record is not found.
var ErrNotFound = errors.New("record not found")

// ErrAmbiguousID is returned when a run ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("run ID prefix matches more than one run")

const memoryPath = ":memory:"

// DB holds the database connection and provides methods for data access.
type DB struct {
	conn *sql.DB
}

// New creates a new database connection.
// If the path is ":memory:", an in-memory database is created.
// Otherwise, the parent directory is created if it doesn't exist.
func New(path string) (*DB, error) {
	if path != memoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == memoryPath {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.Migrate(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// =============================================================================
// Run Methods
// =============================================================================

// CreateRun inserts a new run.
func (d *DB) CreateRun(ctx context.Context, run *Run) error {
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = RunRunning
	}
	if run.Locale == "" {
		run.Locale = "en"
	}

	best, err := encodeRoles(run.BestRoles)
	if err != nil {
		return err
	}

	_, err = d.conn.ExecContext(ctx, `
		INSERT INTO runs (id, topic, locale, iterations, status, best_score, best_prompts, error, output_dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Topic, run.Locale, run.Iterations, run.Status, run.BestScore,
		best, run.Error, run.OutputDir, run.CreatedAt, run.UpdatedAt,
	)
	return err
}

const runColumns = `id, topic, locale, iterations, status, best_score, best_prompts, error, output_dir, created_at, updated_at, finished_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var best string
	var finished sql.NullTime
	if err := row.Scan(
		&run.ID, &run.Topic, &run.Locale, &run.Iterations, &run.Status, &run.BestScore,
		&best, &run.Error, &run.OutputDir, &run.CreatedAt, &run.UpdatedAt, &finished,
	); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	set, err := decodeRoles(best)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	run.BestRoles = set
	return run, nil
}

// GetRun retrieves a run by ID.
func (d *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(d.conn.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRun retrieves a run by its full ID or by a unique ID prefix.
func (d *DB) FindRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	run, err := d.GetRun(ctx, idOrPrefix)
	if !errors.Is(err, ErrNotFound) {
		return run, err
	}

	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idOrPrefix) + "%"
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "FindRun", "error", closeErr)
		}
	}()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "ListRuns", "error", closeErr)
		}
	}()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UpdateBest stores the best score and role set seen so far.
func (d *DB) UpdateBest(ctx context.Context, id string, score float64, set roles.Set) error {
	best, err := encodeRoles(set)
	if err != nil {
		return err
	}
	return d.updateRun(ctx, id, `best_score = ?, best_prompts = ?`, score, best)
}

// FinishRun marks a run as finished with the given status.
func (d *DB) FinishRun(ctx context.Context, id string, status RunStatus, errMsg string) error {
	return d.updateRun(ctx, id, `status = ?, error = ?, finished_at = ?`, status, errMsg, time.Now())
}

func (d *DB) updateRun(ctx context.Context, id, set string, args ...interface{}) error {
	args = append(args, time.Now(), id)
	result, err := d.conn.ExecContext(ctx,
		`UPDATE runs SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Iteration Methods
// =============================================================================

// UpsertIteration stores an iteration, replacing any earlier row with the
// same run and index.
func (d *DB) UpsertIteration(ctx context.Context, it *Iteration) error {
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}
	prompts, err := encodeRoles(it.Prompts)
	if err != nil {
		return err
	}

	_, err = d.conn.ExecContext(ctx, `
		INSERT INTO iterations (run_id, idx, score, delta, parsed, feedback, artifact, prompts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, idx) DO UPDATE SET
			score = excluded.score,
			delta = excluded.delta,
			parsed = excluded.parsed,
			feedback = excluded.feedback,
			artifact = excluded.artifact,
			prompts = excluded.prompts,
			created_at = excluded.created_at`,
		it.RunID, it.Index, it.Score, it.Delta, it.Parsed, it.Feedback, it.Artifact, prompts, it.CreatedAt,
	)
	return err
}

// ListIterations returns the iterations of a run in index order.
func (d *DB) ListIterations(ctx context.Context, runID string) ([]*Iteration, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT run_id, idx, score, delta, parsed, feedback, artifact, prompts, created_at
		FROM iterations WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "ListIterations", "error", closeErr)
		}
	}()

	var iterations []*Iteration
	for rows.Next() {
		it := &Iteration{}
		var prompts string
		if err := rows.Scan(
			&it.RunID, &it.Index, &it.Score, &it.Delta, &it.Parsed,
			&it.Feedback, &it.Artifact, &prompts, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		if it.Prompts, err = decodeRoles(prompts); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it.Index, err)
		}
		iterations = append(iterations, it)
	}
	return iterations, rows.Err()
}

// =============================================================================
// Helpers
// =============================================================================

func encodeRoles(set roles.Set) (string, error) {
	if set.IsZero() {
		return "", nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("failed to encode prompts: %w", err)
	}
	return string(data), nil
}

func decodeRoles(s string) (roles.Set, error) {
	if s == "" {
		return roles.Set{}, nil
	}
	var set roles.Set
	if err := json.Unmarshal([]byte(s), &set); err != nil {
		return roles.Set{}, fmt.Errorf("failed to decode prompts: %w", err)
	}
	return set, nil
}
