// Package sqlite provides a SQLite-backed inference run store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dyadlab/interaction/internal/platform/storage/sqlitemigrate"
	"github.com/dyadlab/interaction/internal/storage"
	"github.com/dyadlab/interaction/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const defaultListLimit = 50

// Store persists inference runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite run store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateRun inserts one run record.
func (s *Store) CreateRun(ctx context.Context, run storage.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(run.ID)
	if id == "" {
		return fmt.Errorf("run id is required")
	}
	if run.TargetAccepted < 0 || run.MaxDraws < 0 {
		return fmt.Errorf("target accepted and max draws must be non-negative")
	}
	if run.Workers < 1 {
		return fmt.Errorf("worker count must be positive")
	}
	createdAt := run.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO inference_runs (
		   id,
		   seed,
		   different_partner_prob,
		   stressed_prob,
		   threshold,
		   target_accepted,
		   max_draws,
		   workers,
		   draws,
		   accepted_different,
		   accepted_same,
		   complete,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		run.Seed,
		run.DifferentPartnerProb,
		run.StressedProb,
		run.Threshold,
		run.TargetAccepted,
		run.MaxDraws,
		run.Workers,
		run.Draws,
		run.AcceptedDifferent,
		run.AcceptedSame,
		boolToInt(run.Complete),
		toMillis(createdAt),
	)
	if err != nil {
		if isRunUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RunRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.RunRecord{}, fmt.Errorf("run id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, seed, different_partner_prob, stressed_prob, threshold,
		        target_accepted, max_draws, workers, draws, accepted_different,
		        accepted_same, complete, created_at
		   FROM inference_runs
		  WHERE id = ?`,
		id,
	)
	run, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RunRecord{}, storage.ErrNotFound
		}
		return storage.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, seed, different_partner_prob, stressed_prob, threshold,
		        target_accepted, max_draws, workers, draws, accepted_different,
		        accepted_same, complete, created_at
		   FROM inference_runs
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []storage.RunRecord
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanRun reads one run row via the provided scan function.
func scanRun(scan func(dest ...any) error) (storage.RunRecord, error) {
	var (
		run       storage.RunRecord
		complete  int
		createdAt int64
	)
	if err := scan(
		&run.ID,
		&run.Seed,
		&run.DifferentPartnerProb,
		&run.StressedProb,
		&run.Threshold,
		&run.TargetAccepted,
		&run.MaxDraws,
		&run.Workers,
		&run.Draws,
		&run.AcceptedDifferent,
		&run.AcceptedSame,
		&complete,
		&createdAt,
	); err != nil {
		return storage.RunRecord{}, err
	}
	run.Complete = complete != 0
	run.CreatedAt = fromMillis(createdAt)
	return run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isRunUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "inference_runs.id")
}

var _ storage.RunStore = (*Store)(nil)
