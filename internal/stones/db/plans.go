package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

// TimeLayout is the fixed-width UTC layout used for plan run timestamps,
// so that text order matches time order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// PlanLogStore records planning calls.
type PlanLogStore struct {
	db *DB
}

// NewPlanLogStore creates a new PlanLogStore.
func NewPlanLogStore(db *DB) *PlanLogStore {
	return &PlanLogStore{db: db}
}

// RecordRun stores one plan run. An empty CreatedAt is stamped with the
// current time.
func (s *PlanLogStore) RecordRun(ctx context.Context, run stones.PlanRun) error {
	if run.ID == "" {
		return fmt.Errorf("recording plan run: missing id")
	}
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(TimeLayout)
	}

	goals, err := json.Marshal(run.Goals)
	if err != nil {
		return fmt.Errorf("encoding goals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_runs
		(id, created_at, goals_json, success, strategy, merges_used, sockets_used, elapsed_ms, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, string(goals), run.Success, run.Strategy,
		run.MergesUsed, run.Sockets, run.ElapsedMs, run.Reason)
	if err != nil {
		return fmt.Errorf("inserting plan run: %w", err)
	}

	return nil
}

// GetRun retrieves a single plan run by id.
func (s *PlanLogStore) GetRun(ctx context.Context, id string) (*stones.PlanRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, goals_json, success, strategy, merges_used, sockets_used, elapsed_ms, reason
		FROM plan_runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan run: %w", err)
	}
	return run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *PlanLogStore) RecentRuns(ctx context.Context, limit int) ([]stones.PlanRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, goals_json, success, strategy, merges_used, sockets_used, elapsed_ms, reason
		FROM plan_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying plan runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []stones.PlanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (*stones.PlanRun, error) {
	var run stones.PlanRun
	var goals string
	if err := sc.Scan(
		&run.ID,
		&run.CreatedAt,
		&goals,
		&run.Success,
		&run.Strategy,
		&run.MergesUsed,
		&run.Sockets,
		&run.ElapsedMs,
		&run.Reason,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(goals), &run.Goals); err != nil {
		return nil, fmt.Errorf("decoding goals: %w", err)
	}
	return &run, nil
}

// CountRuns returns the number of logged runs.
func (s *PlanLogStore) CountRuns(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plan_runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting plan runs: %w", err)
	}
	return count, nil
}

// PruneRuns deletes runs created before the cutoff.
func (s *PlanLogStore) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM plan_runs WHERE created_at < ?
	`, before.UTC().Format(TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning plan runs: %w", err)
	}
	return result.RowsAffected()
}
