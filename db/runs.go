package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/phoaar/cacv-bulletin-automation/models"
)

// DefaultRecentLimit caps Recent when the caller passes a non-positive limit.
const DefaultRecentLimit = 20

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RunStore reads and writes the bulletin_runs table.
type RunStore struct {
	db querier
}

func NewRunStore(db querier) *RunStore {
	return &RunStore{db: db}
}

// Record inserts r, or replaces the row with the same id.
func (s *RunStore) Record(ctx context.Context, r models.RunRecord) error {
	issues := r.Issues
	if issues == nil {
		issues = []string{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("db.RunStore.Record: marshal issues: %w", err)
	}

	const q = `
		INSERT INTO bulletin_runs (id, service_date, slug, status, issues, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			service_date = EXCLUDED.service_date,
			slug         = EXCLUDED.slug,
			status       = EXCLUDED.status,
			issues       = EXCLUDED.issues,
			finished_at  = EXCLUDED.finished_at`

	if _, err := s.db.ExecContext(ctx, q, r.ID, r.ServiceDate, r.Slug, r.Status, issuesJSON, r.StartedAt, r.FinishedAt); err != nil {
		return fmt.Errorf("db.RunStore.Record: %w", err)
	}
	return nil
}

// Recent returns the newest runs first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	const q = `
		SELECT id, service_date, slug, status, issues, started_at, finished_at
		FROM bulletin_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("db.RunStore.Recent: %w", err)
	}
	defer rows.Close()

	runs := []models.RunRecord{}
	for rows.Next() {
		var (
			r          models.RunRecord
			issuesJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.ServiceDate, &r.Slug, &r.Status, &issuesJSON, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("db.RunStore.Recent: scan: %w", err)
		}
		if err := json.Unmarshal(issuesJSON, &r.Issues); err != nil {
			return nil, fmt.Errorf("db.RunStore.Recent: decode issues: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
