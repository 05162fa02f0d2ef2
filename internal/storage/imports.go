package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportRun is the audit record of one import invocation.
type ImportRun struct {
	ID          uuid.UUID
	StartedAt   time.Time
	FinishedAt  time.Time
	Dir         string
	Files       int
	Imported    int
	Rejected    int
	Skipped     int
	Tournaments int
}

// Duration is how long the run took.
func (r ImportRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordImport appends an import run. A zero ID is replaced with a fresh one.
func (s *Store) RecordImport(ctx context.Context, run ImportRun) (ImportRun, error) {
	if s.db == nil {
		return run, ErrClosed
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, started_at, finished_at, dir, files, imported, rejected, skipped, tournaments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.StartedAt.UTC().UnixMilli(), run.FinishedAt.UTC().UnixMilli(), run.Dir,
		run.Files, run.Imported, run.Rejected, run.Skipped, run.Tournaments)
	if err != nil {
		return run, fmt.Errorf("record import %s: %w", run.ID, err)
	}
	return run, nil
}

// Imports lists recorded runs, newest first. A limit of zero or less returns
// every run.
func (s *Store) Imports(ctx context.Context, limit int) ([]ImportRun, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, dir, files, imported, rejected, skipped, tournaments
		FROM import_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var (
			run               ImportRun
			id                string
			started, finished int64
		)
		if err := rows.Scan(&id, &started, &finished, &run.Dir, &run.Files,
			&run.Imported, &run.Rejected, &run.Skipped, &run.Tournaments); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("import run id %q: %w", id, err)
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(finished).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
