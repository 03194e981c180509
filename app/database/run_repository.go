package database

import (
	"database/sql"
	"fmt"
)

var _ RunRepository = (*SQLRunRepository)(nil)

// SQLRunRepository persists scrape run records.
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) RecordRun(run Run) error {
	_, err := r.db.Exec(`
		INSERT INTO runs (
			source, started_at, finished_at, status,
			fingerprint, fetched, fresh, total, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Source, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status,
		run.Fingerprint, run.Fetched, run.Fresh, run.Total, run.Error)

	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

func (r *SQLRunRepository) GetLastRun(source string) (*Run, error) {
	var run Run
	err := r.db.QueryRow(`
		SELECT id, source, started_at, finished_at, status,
		       fingerprint, fetched, fresh, total, error
		FROM runs
		WHERE source = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, source).Scan(
		&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt, &run.Status,
		&run.Fingerprint, &run.Fetched, &run.Fresh, &run.Total, &run.Error,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	return &run, nil
}

func (r *SQLRunRepository) GetRunCount(source string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE source = ?`, source).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}

	return count, nil
}
