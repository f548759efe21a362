package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// SchedulerRunRepository persists the audit trail of ticks.
type SchedulerRunRepository struct {
	db *Database
}

// Open inserts a new running run and returns it with its assigned id.
func (r *SchedulerRunRepository) Open(ctx context.Context, schedulerConfigID, seasonID int) (*models.SchedulerRun, error) {
	query := `
		INSERT INTO scheduler_run (scheduler_config_id, season_id, started_at, status, matches_fetched, matches_new)
		VALUES ($1, $2, NOW(), $3, 0, 0)
		RETURNING id, scheduler_config_id, season_id, started_at, finished_at, status, matches_fetched, matches_new, error_message
	`
	var run models.SchedulerRun
	err := r.db.Pool.QueryRow(ctx, query, schedulerConfigID, seasonID, string(models.RunStatusRunning)).Scan(
		&run.ID, &run.SchedulerConfigID, &run.SeasonID, &run.StartedAt, &run.FinishedAt,
		&run.Status, &run.MatchesFetched, &run.MatchesNew, &run.ErrorMessage,
	)
	if err != nil {
		metrics.RecordDBQuery("insert", "scheduler_run", "error")
		return nil, fmt.Errorf("failed to open scheduler run: %w", err)
	}
	metrics.RecordDBQuery("insert", "scheduler_run", "ok")
	return &run, nil
}

// Close finalizes a run's outcome.
func (r *SchedulerRunRepository) Close(ctx context.Context, run *models.SchedulerRun) error {
	query := `
		UPDATE scheduler_run
		SET finished_at = $2, status = $3, matches_fetched = $4, matches_new = $5, error_message = $6
		WHERE id = $1
	`
	_, err := r.db.Pool.Exec(ctx, query, run.ID, run.FinishedAt, string(run.Status), run.MatchesFetched, run.MatchesNew, run.ErrorMessage)
	if err != nil {
		metrics.RecordDBQuery("update", "scheduler_run", "error")
		return fmt.Errorf("failed to close scheduler run %d: %w", run.ID, err)
	}
	metrics.RecordDBQuery("update", "scheduler_run", "ok")
	return nil
}

// ListBySeasonID returns recent runs for a season, newest first.
func (r *SchedulerRunRepository) ListBySeasonID(ctx context.Context, seasonID int, limit int) ([]*models.SchedulerRun, error) {
	query := `
		SELECT id, scheduler_config_id, season_id, started_at, finished_at, status, matches_fetched, matches_new, error_message
		FROM scheduler_run WHERE season_id = $1 ORDER BY started_at DESC LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, seasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	var runs []*models.SchedulerRun
	for rows.Next() {
		var run models.SchedulerRun
		if err := rows.Scan(
			&run.ID, &run.SchedulerConfigID, &run.SeasonID, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.MatchesFetched, &run.MatchesNew, &run.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduler run row: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// CloseStaleRunning closes every run still `running` at process startup
// (left over from a crash) as `failed`, tagging the error message so the
// cause is distinguishable from a genuine tick failure.
func (r *SchedulerRunRepository) CloseStaleRunning(ctx context.Context) (int64, error) {
	query := `
		UPDATE scheduler_run
		SET finished_at = NOW(), status = $1, error_message = 'left running across a process restart'
		WHERE status = $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, string(models.RunStatusFailed), string(models.RunStatusRunning))
	if err != nil {
		metrics.RecordDBQuery("update", "scheduler_run", "error")
		return 0, fmt.Errorf("failed to close stale running runs: %w", err)
	}
	metrics.RecordDBQuery("update", "scheduler_run", "ok")
	return tag.RowsAffected(), nil
}

// GetByID returns one run by id, or ErrNotFound.
func (r *SchedulerRunRepository) GetByID(ctx context.Context, id int) (*models.SchedulerRun, error) {
	query := `
		SELECT id, scheduler_config_id, season_id, started_at, finished_at, status, matches_fetched, matches_new, error_message
		FROM scheduler_run WHERE id = $1
	`
	var run models.SchedulerRun
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.SchedulerConfigID, &run.SeasonID, &run.StartedAt, &run.FinishedAt,
		&run.Status, &run.MatchesFetched, &run.MatchesNew, &run.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scheduler run %d: %w", id, err)
	}
	return &run, nil
}
